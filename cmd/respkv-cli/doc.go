// Package main provides the entry point for respkv-cli.
//
// Usage:
//
//	respkv-cli [--server host:port | --unix path] [--output text|json|yaml] [command]
//
// Without a command the CLI starts an interactive session.
package main
