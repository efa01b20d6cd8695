// Package repl provides the interactive mode of respkv-cli.
//
// Each input line is split into arguments using redis-cli quoting rules,
// sent to the server and the reply is printed with the selected output
// format. Lines are kept in a history file between sessions.
//
// Built-in commands: help [prefix], history and exit. QUIT is sent to the
// server and ends the session once it answers.
package repl
