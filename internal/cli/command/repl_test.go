package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREPLCommand(t *testing.T) {
	addr := startServer(t)

	r := runCLI(t, "set a \"hello world\"\nget a\nexit\n", "--server", addr, "repl")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, addr+"> ")
	assert.Contains(t, r.out, "OK\n")
	assert.Contains(t, r.out, "\"hello world\"\n")
}

func TestREPLIsDefaultAction(t *testing.T) {
	addr := startServer(t)

	r := runCLI(t, "ping\n", "--server", addr)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "PONG\n")
}

func TestREPLWritesHistory(t *testing.T) {
	addr := startServer(t)
	history := filepath.Join(t.TempDir(), "history")
	cfg := filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("history_file: "+history+"\n"), 0o600))

	r := runCLI(t, "ping\nexit\n", "--config", cfg, "--server", addr)
	require.NoError(t, r.err)

	data, err := os.ReadFile(history)
	require.NoError(t, err)
	assert.Equal(t, []string{"ping", "exit"}, strings.Fields(string(data)))
}

func TestUnknownCommand(t *testing.T) {
	r := runCLI(t, "", "--server", "127.0.0.1:1", "bogus")
	assert.Error(t, r.err)
}
