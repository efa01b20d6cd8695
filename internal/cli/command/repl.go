package command

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/config"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive session",
		Action:  runREPL,
	}
}

func runREPL(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	client, err := Connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	cfg := CLIConfig(c)
	historyFile := cfg.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(config.Dir(), "history")
	}

	prompt := cfg.Server
	if cfg.Unix != "" {
		prompt = cfg.Unix
	}

	r := repl.New(client, output.NewFormatter(ParseGlobalFlags(c).Output),
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(repl.NewHistory(historyFile)),
		repl.WithPrompt(prompt+"> "))
	return r.Run(c.Context)
}
