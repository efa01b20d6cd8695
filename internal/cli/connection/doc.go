// Package connection provides the RESP client used by respkv-cli.
//
// A Client holds one TCP, TLS or unix socket connection and runs commands one
// at a time: the command is written as a RESP array of bulk strings and a
// single reply is read back with the server's own codec.
package connection
