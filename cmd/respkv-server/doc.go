// Package main provides the entry point for respkv-server.
//
// respkv-server is an in-memory key-value server speaking the Redis
// serialization protocol. Any Redis client can connect to it.
//
// Usage:
//
//	respkv-server [--config respkv.yaml] [--port 6379] [--log-level debug]
package main
