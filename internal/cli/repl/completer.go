package repl

import (
	"sort"
	"strings"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "help", "history"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the server commands and the REPL
// built-ins.
func NewCompleter() *Completer {
	names := redisserver.CommandNames()
	commands := make([]string, 0, len(names)+len(builtins))
	for _, n := range names {
		commands = append(commands, strings.ToLower(n))
	}
	commands = append(commands, builtins...)
	sort.Strings(commands)
	return &Completer{commands: commands}
}

// Complete returns the commands starting with prefix, in sorted order.
// Matching ignores case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
