package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check that the server answers",
		ArgsUsage: "[MESSAGE]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return fmt.Errorf("ping takes at most one message")
			}
			args := []string{"PING"}
			if c.NArg() == 1 {
				args = append(args, c.Args().First())
			}
			return execute(c, args...)
		},
	}
}

// EchoCommand returns the echo command.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Have the server echo a message",
		ArgsUsage: "MESSAGE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("echo requires exactly one message")
			}
			return execute(c, "ECHO", c.Args().First())
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one key")
			}
			return execute(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key, optionally with an expiration",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "ex",
				Usage: "Expire after this many seconds",
			},
			&cli.Int64Flag{
				Name:  "px",
				Usage: "Expire after this many milliseconds",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("set requires a key and a value")
			}
			if c.IsSet("ex") && c.IsSet("px") {
				return fmt.Errorf("--ex and --px are mutually exclusive")
			}

			args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
			switch {
			case c.IsSet("ex"):
				args = append(args, "EX", strconv.FormatInt(c.Int64("ex"), 10))
			case c.IsSet("px"):
				args = append(args, "PX", strconv.FormatInt(c.Int64("px"), 10))
			}
			return execute(c, args...)
		},
	}
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Usage:     "Delete keys",
		ArgsUsage: "KEY [KEY...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("del requires at least one key")
			}
			return execute(c, append([]string{"DEL"}, c.Args().Slice()...)...)
		},
	}
}

// TTLCommand returns the ttl command.
func TTLCommand() *cli.Command {
	return &cli.Command{
		Name:      "ttl",
		Usage:     "Show the remaining time to live of a key",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ms",
				Usage: "Report milliseconds (PTTL)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("ttl requires exactly one key")
			}
			name := "TTL"
			if c.Bool("ms") {
				name = "PTTL"
			}
			return execute(c, name, c.Args().First())
		},
	}
}

// RawCommand returns the raw command, which sends its arguments verbatim.
func RawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Send any command, e.g. raw -- SCAN 0 MATCH user:*",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("raw requires a command")
			}
			return execute(c, c.Args().Slice()...)
		},
	}
}
