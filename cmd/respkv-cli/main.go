package main

import (
	"errors"
	"os"

	"github.com/yndnr/respkv/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		// The error reply was already printed.
		if !errors.Is(err, command.ErrServerReply) {
			command.PrintError("%v", err)
		}
		os.Exit(1)
	}
}
