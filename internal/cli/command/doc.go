// Package command provides the respkv-cli command tree.
//
// Commands are defined with urfave/cli/v2:
//
//   - root.go: application, global flags and CLI config resolution
//   - kv.go: ping, echo, get, set, del, ttl and raw
//   - repl.go: interactive mode, also the default without a subcommand
//   - config.go: show and init for ~/.respkv/cli.yaml
//
// Every command dials the server, sends one command and prints the reply
// with the selected output format.
package command
