package connection

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

func startServer(t *testing.T, network, addr string) net.Listener {
	t.Helper()
	ln, err := net.Listen(network, addr)
	require.NoError(t, err)

	srv := redisserver.New(redisserver.DefaultConfig(), memory.New(), nil, nil)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return ln
}

func TestClient_Do(t *testing.T) {
	ln := startServer(t, "tcp", "127.0.0.1:0")
	ctx := context.Background()

	c, err := Dial(ctx, Options{Addr: ln.Addr().String()})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	reply, err := c.Do(ctx, "SET", "greeting", "hello world")
	require.NoError(t, err)
	assert.Equal(t, redisserver.ReplyOK, reply)

	reply, err = c.Do(ctx, "GET", "greeting")
	require.NoError(t, err)
	assert.Equal(t, redisserver.KindBulk, reply.Kind)
	assert.Equal(t, "hello world", string(reply.Bulk))

	reply, err = c.Do(ctx, "GET", "missing")
	require.NoError(t, err)
	assert.Equal(t, redisserver.KindNullBulk, reply.Kind)
}

func TestClient_ErrorReplyIsNotAnError(t *testing.T) {
	ln := startServer(t, "tcp", "127.0.0.1:0")
	ctx := context.Background()

	c, err := Dial(ctx, Options{Addr: ln.Addr().String()})
	require.NoError(t, err)
	defer c.Close()

	reply, err := c.Do(ctx, "NOPE")
	require.NoError(t, err)
	assert.True(t, reply.IsError())
	assert.Contains(t, reply.Str, "unknown command")

	// The connection stays usable.
	require.NoError(t, c.Ping(ctx))
}

func TestClient_Unix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respkv.sock")
	startServer(t, "unix", path)

	c, err := Dial(context.Background(), Options{Unix: path, Addr: "ignored:1"})
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_Closed(t *testing.T) {
	ln := startServer(t, "tcp", "127.0.0.1:0")

	c, err := Dial(context.Background(), Options{Addr: ln.Addr().String()})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Do(context.Background(), "PING")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_EmptyCommand(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	c := NewClient(client, time.Second)
	defer c.Close()

	_, err := c.Do(context.Background())
	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	// The peer reads the command but never answers.
	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := server.Read(buf); err != nil {
				return
			}
		}
	}()

	c := NewClient(client, 50*time.Millisecond)
	defer c.Close()

	_, err := c.Do(context.Background(), "PING")
	require.Error(t, err)
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

func TestDial_Errors(t *testing.T) {
	_, err := Dial(context.Background(), Options{})
	assert.Error(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), Options{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestOptions_Network(t *testing.T) {
	n, a := Options{Addr: "h:1"}.Network()
	assert.Equal(t, "tcp", n)
	assert.Equal(t, "h:1", a)

	n, a = Options{Addr: "h:1", Unix: "/tmp/s"}.Network()
	assert.Equal(t, "unix", n)
	assert.Equal(t, "/tmp/s", a)
}
