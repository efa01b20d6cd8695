// Package logger provides structured logging for respkv.
//
// This package wraps log/slog:
//
//   - logger.go: logger construction, global level control
//   - context.go: carrying a Logger in a context.Context
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Automatic masking of sensitive attributes
package logger
