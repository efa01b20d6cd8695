package memory

import (
	"log/slog"
	"sync"
	"time"
)

// Default sweep settings.
const (
	DefaultSweepInterval = 100 * time.Millisecond
	DefaultSweepBatch    = 20
)

// Sweeper periodically removes expired entries from a Store.
type Sweeper struct {
	store    *Store
	interval time.Duration
	batch    int
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSweeper creates a sweeper that runs every interval, removing up to
// batch expired entries per shard per run. A nil logger uses slog.Default.
func NewSweeper(store *Store, interval time.Duration, batch int, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		batch:    batch,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background loop. Calling it more than once is a no-op.
func (w *Sweeper) Start() {
	w.startOnce.Do(func() {
		go w.loop()
	})
}

// Stop stops the background loop and waits for it to exit.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	// A sweeper that never started has no loop to close doneCh.
	w.startOnce.Do(func() {
		close(w.doneCh)
	})
	<-w.doneCh
}

// RunOnce performs a single sweep and returns the number of removed entries.
func (w *Sweeper) RunOnce() int {
	return w.store.DeleteExpired(w.batch)
}

func (w *Sweeper) loop() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := w.RunOnce(); n > 0 {
				w.logger.Debug("expired keys swept", "count", n)
			}
		case <-w.stopCh:
			return
		}
	}
}
