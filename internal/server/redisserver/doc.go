// Package redisserver serves the key-value store over the Redis
// serialization protocol (RESP2).
//
// The package is split into:
//   - resp.go: incremental command decoder and command encoder
//   - reply.go: typed replies and their wire form
//   - command.go: command table and dispatch
//   - conn.go: per-connection read, dispatch and write loop
//   - server.go: listeners, accept loop and graceful shutdown
//
// Supported commands:
//   - PING, ECHO, QUIT, COMMAND
//   - SET [EX|PX], GET, DEL, EXISTS
//   - EXPIRE, PEXPIRE, PERSIST, TTL, PTTL
//   - DBSIZE, SCAN, FLUSHALL
//
// Any RESP client, including redis-cli, can talk to the server. Inline
// commands typed over telnet are accepted as well.
package redisserver
