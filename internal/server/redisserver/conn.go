package redisserver

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/internal/core/domain"
)

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	bw      *bufio.Writer
	limiter *rate.Limiter
	opened  time.Time

	// mu orders read deadline updates against interrupt, so that a deadline
	// armed for the next read cannot undo a shutdown request.
	mu       sync.Mutex
	stopping bool

	commands atomic.Int64
	closed   atomic.Bool
}

func newConn(id string, c net.Conn, rateLimit int) *Conn {
	conn := &Conn{
		id:      id,
		netConn: c,
		bw:      bufio.NewWriter(c),
		opened:  time.Now(),
	}
	if rateLimit > 0 {
		conn.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return conn
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.netConn.RemoteAddr() }

// Close closes the underlying socket. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// armRead sets the deadline for the next read. It returns false once the
// connection has been interrupted.
func (c *Conn) armRead(idle time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopping {
		return false
	}
	var deadline time.Time
	if idle > 0 {
		deadline = time.Now().Add(idle)
	}
	_ = c.netConn.SetReadDeadline(deadline)
	return true
}

// interrupt wakes a blocked read so the connection loop can exit. Commands
// already read are still executed and answered.
func (c *Conn) interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopping = true
	_ = c.netConn.SetReadDeadline(time.Now())
}

func (c *Conn) flush(timeout time.Duration) error {
	if c.bw.Buffered() == 0 {
		return nil
	}
	if timeout > 0 {
		if err := c.netConn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return c.bw.Flush()
}

// serveConn runs the read, dispatch and write loop for c until the peer
// goes away, a protocol error occurs or the server shuts down.
//
// Every complete frame in the read buffer is executed in order and its
// reply queued; the queue is flushed once the buffer holds no further
// complete frame.
func (s *Server) serveConn(c *Conn) {
	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("client connected")

	bufSize := s.cfg.ReadBufferSize
	if bufSize <= 0 {
		bufSize = DefaultReadBufferSize
	}
	buf := make([]byte, 0, bufSize)

	var readErr error
	for {
		start := 0
		for start < len(buf) {
			cmd, n, err := Decode(buf[start:])
			if errors.Is(err, ErrNeedMoreData) {
				break
			}
			if IsProtocolError(err) {
				s.metrics.IncProtocolErrors()
				log.Warn("protocol error", "error", err)
				_ = WriteReply(c.bw, ErrorFrom(domain.ProtocolError(protocolDetail(err))))
				_ = c.flush(s.cfg.WriteTimeout)
				return
			}
			if err != nil {
				log.Error("decode failed", "error", err)
				return
			}
			start += n
			if cmd.Empty() {
				continue
			}

			reply, action := s.dispatch(c, cmd)
			if err := WriteReply(c.bw, reply); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
			if action == ActionClose {
				_ = c.flush(s.cfg.WriteTimeout)
				log.Debug("client quit")
				return
			}
		}

		if err := c.flush(s.cfg.WriteTimeout); err != nil {
			log.Debug("write failed", "error", err)
			return
		}

		if readErr != nil {
			logReadError(log, readErr)
			return
		}

		// Keep only the unconsumed tail, growing the buffer when a single
		// frame does not fit.
		buf = buf[:copy(buf, buf[start:])]
		if len(buf) == cap(buf) {
			grown := make([]byte, len(buf), 2*cap(buf))
			copy(grown, buf)
			buf = grown
		}

		if !c.armRead(s.cfg.IdleTimeout) {
			log.Debug("connection interrupted by shutdown")
			return
		}
		n, err := c.netConn.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		readErr = err
	}
}

func (s *Server) dispatch(c *Conn, cmd Command) (Reply, Action) {
	c.commands.Add(1)
	if c.limiter != nil && !c.limiter.Allow() {
		s.metrics.ObserveCommand("limited", "error", 0)
		return ErrorFrom(domain.ErrRateLimited), ActionContinue
	}
	return s.handler.Handle(cmd)
}

func logReadError(log *slog.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		log.Debug("client disconnected")
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("connection timed out")
	default:
		log.Debug("connection read error", "error", err)
	}
}

// protocolDetail strips the sentinel prefix from a decode error, leaving
// the part a client can act on.
func protocolDetail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrProtocol, ErrLimitExceeded} {
		if p := sentinel.Error() + ": "; strings.HasPrefix(msg, p) {
			return strings.TrimPrefix(msg, p)
		}
	}
	return msg
}
