package redisserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/cmap"
)

// DefaultReadBufferSize is the initial per-connection read buffer.
const DefaultReadBufferSize = 16 * 1024

// ErrServerClosed is returned by Serve and Start after Shutdown.
var ErrServerClosed = errors.New("redisserver: server closed")

// Config holds the server configuration.
type Config struct {
	// PlainEnabled enables the plaintext TCP listener.
	PlainEnabled bool
	// PlainAddress is the address for the plaintext listener.
	PlainAddress string
	// TLSAddress enables a TLS listener on this address when non-empty.
	TLSAddress string
	// TLSConfig is required when TLSAddress is set.
	TLSConfig *tls.Config
	// UnixSocket enables a unix domain socket listener at this path.
	UnixSocket string
	// MaxConnections caps concurrent clients. 0 means unlimited.
	MaxConnections int
	// IdleTimeout closes connections that send nothing for this long.
	// 0 disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds each reply flush. 0 disables it.
	WriteTimeout time.Duration
	// RateLimit is the maximum commands per second per connection.
	// 0 disables rate limiting.
	RateLimit int
	// ReadBufferSize is the initial read buffer per connection.
	ReadBufferSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PlainEnabled:   true,
		PlainAddress:   "127.0.0.1:6379",
		ReadBufferSize: DefaultReadBufferSize,
	}
}

// Server accepts RESP clients and serves them from a memory.Store.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	metrics *metric.Registry
	logger  *slog.Logger
	sem     *semaphore.Weighted

	mu        sync.Mutex
	listeners []net.Listener

	conns     *cmap.Map[*Conn]
	closing   atomic.Bool
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a server. metrics and logger may be nil.
func New(cfg *Config, store *memory.Store, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		conns:   cmap.New[*Conn](),
		quit:    make(chan struct{}),
	}
	s.handler = NewCommandHandler(store, metrics, logger)
	if cfg.MaxConnections > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}
	return s
}

// Start binds every configured listener and serves them in the background.
// A bind failure closes the listeners opened so far and is returned.
func (s *Server) Start(ctx context.Context) error {
	if s.closing.Load() {
		return ErrServerClosed
	}

	var lc net.ListenConfig
	var opened []net.Listener
	fail := func(err error) error {
		for _, ln := range opened {
			_ = ln.Close()
		}
		return err
	}

	if s.cfg.PlainEnabled {
		ln, err := lc.Listen(ctx, "tcp", s.cfg.PlainAddress)
		if err != nil {
			return fail(fmt.Errorf("listen %s: %w", s.cfg.PlainAddress, err))
		}
		opened = append(opened, ln)
	}

	if s.cfg.TLSAddress != "" {
		if s.cfg.TLSConfig == nil {
			return fail(errors.New("tls listener requires a TLS config"))
		}
		ln, err := lc.Listen(ctx, "tcp", s.cfg.TLSAddress)
		if err != nil {
			return fail(fmt.Errorf("listen %s: %w", s.cfg.TLSAddress, err))
		}
		opened = append(opened, tls.NewListener(ln, s.cfg.TLSConfig))
	}

	if s.cfg.UnixSocket != "" {
		if err := removeStaleSocket(s.cfg.UnixSocket); err != nil {
			return fail(err)
		}
		ln, err := lc.Listen(ctx, "unix", s.cfg.UnixSocket)
		if err != nil {
			return fail(fmt.Errorf("listen %s: %w", s.cfg.UnixSocket, err))
		}
		opened = append(opened, ln)
	}

	if len(opened) == 0 {
		s.logger.Info("redis server disabled (no listener configured)")
		return nil
	}

	for _, ln := range opened {
		if !s.track(ln) {
			return fail(ErrServerClosed)
		}
	}
	for _, ln := range opened {
		s.logger.Info("redis server listening", "network", ln.Addr().Network(), "address", ln.Addr().String())
		s.wg.Add(1)
		go func(ln net.Listener) {
			defer s.wg.Done()
			s.acceptLoop(ln)
		}(ln)
	}
	return nil
}

// Serve accepts connections on ln until Shutdown or until ln is closed, and
// then returns ErrServerClosed. Accept errors are retried with backoff.
func (s *Server) Serve(ln net.Listener) error {
	s.wg.Add(1)
	defer s.wg.Done()
	if !s.track(ln) {
		_ = ln.Close()
		return ErrServerClosed
	}
	s.acceptLoop(ln)
	return ErrServerClosed
}

// ServeConn serves one already established connection and returns when it
// is closed.
func (s *Server) ServeConn(nc net.Conn) {
	if s.closing.Load() {
		_ = nc.Close()
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConn(nc)
}

// Addr returns the address of the first listener, or nil if none is open.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listeners) == 0 {
		return nil
	}
	return s.listeners[0].Addr()
}

// ConnCount returns the number of open client connections.
func (s *Server) ConnCount() int {
	return s.conns.Count()
}

// Shutdown stops accepting connections, interrupts idle reads and waits for
// connection loops to finish the commands they already read. If ctx expires
// first, the remaining connections are closed and ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	s.closeOnce.Do(func() { close(s.quit) })

	var firstErr error
	s.mu.Lock()
	for _, ln := range s.listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) && firstErr == nil {
			firstErr = err
		}
	}
	s.listeners = nil
	s.mu.Unlock()

	s.conns.Range(func(_ string, c *Conn) bool {
		c.interrupt()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.conns.Range(func(_ string, c *Conn) bool {
			_ = c.Close()
			return true
		})
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

func (s *Server) track(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return false
	}
	s.listeners = append(s.listeners, ln)
	return true
}

// acceptLoop runs until the server shuts down or ln is closed.
func (s *Server) acceptLoop(ln net.Listener) {
	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			// Anything else, EMFILE included, is treated as transient.
			backoff = nextBackoff(backoff)
			s.logger.Error("accept error, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-s.quit:
				return
			}
			continue
		}
		backoff = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(nc)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

// handleConn admits nc against the connection limit and runs its loop.
func (s *Server) handleConn(nc net.Conn) {
	if s.sem != nil {
		if !s.sem.TryAcquire(1) {
			s.reject(nc)
			return
		}
		defer s.sem.Release(1)
	}

	c := newConn(ulid.Make().String(), nc, s.cfg.RateLimit)
	s.conns.Set(c.id, c)
	s.metrics.ConnectionOpened()
	defer func() {
		_ = c.Close()
		s.conns.Delete(c.id)
		s.metrics.ConnectionClosed()
		s.logger.Debug("connection closed",
			"conn_id", c.id,
			"commands", c.commands.Load(),
			"duration", time.Since(c.opened))
	}()

	// A connection accepted while shutting down still answers whatever it
	// has already sent.
	if s.closing.Load() {
		c.interrupt()
	}
	s.serveConn(c)
}

func (s *Server) reject(nc net.Conn) {
	defer nc.Close()
	s.metrics.ConnectionRejected("max_clients")
	s.logger.Warn("connection rejected", "remote", nc.RemoteAddr().String(), "reason", "max_clients")
	if s.cfg.WriteTimeout > 0 {
		_ = nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	_, _ = nc.Write(EncodeReply(ErrorFrom(domain.ErrMaxClients)))
}

// removeStaleSocket deletes a unix socket left behind by a previous run.
// Anything other than a socket at path is left alone.
func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("unix socket path %s exists and is not a socket", path)
	}
	return os.Remove(path)
}
