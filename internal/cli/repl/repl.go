package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/server/redisserver"
)

// Doer runs one command against the server.
type Doer interface {
	Do(ctx context.Context, args ...string) (redisserver.Reply, error)
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory replaces the default in-memory history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithPrompt sets the prompt, e.g. "127.0.0.1:6379> ".
func WithPrompt(prompt string) Option {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	client    Doer
	formatter output.Formatter
	input     io.Reader
	output    io.Writer
	prompt    string
	completer *Completer
	history   *History
}

// New creates a new REPL that sends commands to client.
func New(client Doer, formatter output.Formatter, opts ...Option) *REPL {
	r := &REPL{
		client:    client,
		formatter: formatter,
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    "respkv> ",
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until EOF, exit or quit. Server error replies are
// printed and the loop goes on; a transport error ends it.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: cannot load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: cannot save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line != "" {
			r.history.Add(line)
			done, execErr := r.execute(ctx, line)
			if execErr != nil {
				return execErr
			}
			if done {
				return nil
			}
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// execute handles one line. It reports whether the session is over.
func (r *REPL) execute(ctx context.Context, line string) (bool, error) {
	args, err := splitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "(error) %v\n", err)
		return false, nil
	}
	if len(args) == 0 {
		return false, nil
	}

	switch strings.ToLower(args[0]) {
	case "exit":
		return true, nil
	case "help":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		fmt.Fprintln(r.output, strings.Join(r.completer.Complete(prefix), " "))
		return false, nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
		}
		return false, nil
	}

	reply, err := r.client.Do(ctx, args...)
	if err != nil {
		return false, err
	}
	if err := r.formatter.Format(r.output, reply); err != nil {
		return false, err
	}
	return strings.EqualFold(args[0], "quit"), nil
}
