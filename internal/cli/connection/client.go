package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// DefaultTimeout bounds dialing and each command round trip.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection: client closed")

// Options configures a Client.
type Options struct {
	// Addr is a host:port for TCP. Ignored when Unix is set.
	Addr string
	// Unix is the path of a unix domain socket.
	Unix string
	// Timeout bounds dialing and each round trip. Zero means DefaultTimeout.
	Timeout time.Duration
	// TLS enables TLS with this config when set.
	TLS *tls.Config
}

// Network returns the dial network and address described by o.
func (o Options) Network() (string, string) {
	if o.Unix != "" {
		return "unix", o.Unix
	}
	return "tcp", o.Addr
}

// Client is a RESP client for a single connection. It is safe for
// concurrent use; commands are serialized.
type Client struct {
	opts Options

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	closed bool
}

// Dial connects to the server described by opts.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	network, addr := opts.Network()
	if addr == "" {
		return nil, errors.New("connection: no server address")
	}

	var conn net.Conn
	var err error
	d := &net.Dialer{Timeout: opts.Timeout}
	if opts.TLS != nil {
		td := &tls.Dialer{NetDialer: d, Config: opts.TLS}
		conn, err = td.DialContext(ctx, network, addr)
	} else {
		conn, err = d.DialContext(ctx, network, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return NewClient(conn, opts.Timeout), nil
}

// NewClient wraps an established connection. timeout bounds each round
// trip; zero disables deadlines.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		opts:   Options{Addr: conn.RemoteAddr().String(), Timeout: timeout},
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// Addr returns the address of the server.
func (c *Client) Addr() string {
	return c.opts.Addr
}

// Do sends one command and waits for its reply. An error reply from the
// server is returned as a Reply, not as an error; err reports transport
// and framing failures only, after which the client should be closed.
func (c *Client) Do(ctx context.Context, args ...string) (redisserver.Reply, error) {
	if len(args) == 0 {
		return redisserver.Reply{}, errors.New("connection: empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return redisserver.Reply{}, ErrClosed
	}

	deadline := time.Time{}
	if c.opts.Timeout > 0 {
		deadline = time.Now().Add(c.opts.Timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return redisserver.Reply{}, err
	}

	if _, err := c.writer.Write(redisserver.EncodeCommandStrings(args...)); err != nil {
		return redisserver.Reply{}, fmt.Errorf("send %s: %w", args[0], err)
	}
	if err := c.writer.Flush(); err != nil {
		return redisserver.Reply{}, fmt.Errorf("send %s: %w", args[0], err)
	}

	reply, err := redisserver.ReadReply(c.reader)
	if err != nil {
		return redisserver.Reply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	reply, err := c.Do(ctx, "PING")
	if err != nil {
		return err
	}
	if reply.IsError() {
		return errors.New(reply.Str)
	}
	return nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
