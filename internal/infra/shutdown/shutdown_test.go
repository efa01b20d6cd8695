package shutdown

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects hook names in call order.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) hook(name string) Hook {
	return func(context.Context) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return nil
	}
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func TestHandler_ReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)
	rec := &recorder{}
	h.OnShutdown("sweeper", rec.hook("sweeper"))
	h.OnShutdown("metrics", rec.hook("metrics"))
	h.OnShutdown("redis", rec.hook("redis"))

	require.NoError(t, h.Shutdown())
	assert.Equal(t, []string{"redis", "metrics", "sweeper"}, rec.calls())

	select {
	case <-h.Done():
	default:
		t.Fatal("Done channel should be closed after Shutdown")
	}
}

func TestHandler_DoneOpenUntilShutdown(t *testing.T) {
	h := NewHandler(time.Second)
	select {
	case <-h.Done():
		t.Fatal("Done channel closed before Shutdown")
	default:
	}
}

func TestHandler_WaitOnSignal(t *testing.T) {
	h := NewHandler(time.Second)
	rec := &recorder{}
	h.OnShutdown("a", rec.hook("a"))
	h.OnShutdown("b", rec.hook("b"))

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to install the signal handler.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}
	assert.Equal(t, []string{"b", "a"}, rec.calls())
}

func TestHandler_WaitOnContext(t *testing.T) {
	h := NewHandler(time.Second)
	var called atomic.Bool
	h.OnShutdown("flag", func(context.Context) error {
		called.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after ctx was canceled")
	}
	assert.True(t, called.Load())
}

func TestHandler_HookErrorsJoined(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(time.Second, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	errBoom := errors.New("boom")
	rec := &recorder{}
	h.OnShutdown("first", rec.hook("first"))
	h.OnShutdown("broken", func(context.Context) error { return errBoom })
	h.OnShutdown("last", rec.hook("last"))

	err := h.Shutdown()
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.Equal(t, []string{"last", "first"}, rec.calls(), "a failing hook must not stop the rest")
	assert.Contains(t, buf.String(), "hook=broken")
}

func TestHandler_RunsOnce(t *testing.T) {
	h := NewHandler(time.Second)
	var calls atomic.Int32
	h.OnShutdown("once", func(context.Context) error {
		calls.Add(1)
		return errors.New("first")
	})

	err1 := h.Shutdown()
	err2 := h.Shutdown()
	assert.Equal(t, int32(1), calls.Load())
	require.Error(t, err1)
	assert.Same(t, err1, err2)
}

func TestHandler_Timeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, h.Shutdown(), context.DeadlineExceeded)
}

func TestHandler_ConcurrentRegistration(t *testing.T) {
	h := NewHandler(time.Second)
	var ran atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("worker", func(context.Context) error {
				ran.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, h.Shutdown())
	assert.Equal(t, int32(10), ran.Load())
}
