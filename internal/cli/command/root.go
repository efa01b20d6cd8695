package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/config"
	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/tlsroots"
)

const cliConfigKey = "cliConfig"

// ErrServerReply is returned when the server answered with an error
// reply. The reply itself has already been printed.
var ErrServerReply = errors.New("server returned an error")

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "Command-line client for respkv-server",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
			DelCommand(),
			TTLCommand(),
			RawCommand(),
			REPLCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]any{}
			}
			c.App.Metadata[cliConfigKey] = cfg
			return nil
		},
		Action: runREPL,
	}
}

// globalFlags returns the global CLI flags. They carry no default values:
// unset flags fall back to the CLI config file and its defaults.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Server address (default 127.0.0.1:6379)",
			EnvVars: []string{"RESPKV_CLI_SERVER"},
		},
		&cli.StringFlag{
			Name:    "unix",
			Aliases: []string{"u"},
			Usage:   "Unix socket path, takes precedence over --server",
			EnvVars: []string{"RESPKV_CLI_UNIX"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
			EnvVars: []string{"RESPKV_CLI_OUTPUT"},
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "Connect with TLS",
		},
		&cli.StringFlag{
			Name:  "cacert",
			Usage: "CA certificate file used to verify the server (implies --tls)",
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip TLS certificate verification (implies --tls)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and command timeout (default 5s)",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"RESPKV_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

// resolveConfig loads the CLI config file and applies the global flags.
func resolveConfig(c *cli.Context) (*config.CLIConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := map[string]string{
		"server":  c.String("server"),
		"unix":    c.String("unix"),
		"output":  c.String("output"),
		"ca_cert": c.String("cacert"),
	}
	if c.Bool("tls") || c.IsSet("cacert") || c.Bool("insecure") {
		overrides["tls"] = "true"
	}
	if c.Bool("insecure") {
		overrides["insecure"] = "true"
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout").String()
	}
	cfg, err = config.Merge(cfg, overrides)
	if err != nil {
		return nil, err
	}

	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CLIConfig returns the resolved configuration stored by App.Before.
func CLIConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[cliConfigKey].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// GlobalFlags holds the effective connection and output settings.
type GlobalFlags struct {
	Server   string
	Unix     string
	Output   output.Format
	Timeout  time.Duration
	TLS      bool
	CACert   string
	Insecure bool
}

// ParseGlobalFlags extracts the effective global settings from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	cfg := CLIConfig(c)
	format, _ := output.ParseFormat(cfg.Output)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}
	return &GlobalFlags{
		Server:   cfg.Server,
		Unix:     cfg.Unix,
		Output:   format,
		Timeout:  timeout,
		TLS:      cfg.TLS,
		CACert:   cfg.CACert,
		Insecure: cfg.Insecure,
	}
}

// Connect dials the server selected by the global flags.
func Connect(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)
	opts := connection.Options{
		Addr:    flags.Server,
		Unix:    flags.Unix,
		Timeout: flags.Timeout,
	}
	if flags.TLS {
		// The server name is taken from the dialed address.
		tlsCfg, err := tlsroots.ClientConfigFromFile(flags.CACert, "", flags.Insecure)
		if err != nil {
			return nil, err
		}
		opts.TLS = tlsCfg
	}
	return connection.Dial(c.Context, opts)
}

// execute runs one command and prints its reply. An error reply yields
// ErrServerReply.
func execute(c *cli.Context, args ...string) error {
	client, err := Connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	flags := ParseGlobalFlags(c)
	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	reply, err := client.Do(ctx, args...)
	if err != nil {
		return err
	}
	if err := output.NewFormatter(flags.Output).Format(c.App.Writer, reply); err != nil {
		return err
	}
	if reply.IsError() {
		return ErrServerReply
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
