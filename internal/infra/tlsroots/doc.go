// Package tlsroots provides TLS certificate management for respkv.
//
//   - roots.go: CA pools for clients (system roots plus a custom CA file)
//   - reloader.go: server certificate hot reload via fsnotify
//
// The TLS listener of respkv-server serves whatever certificate the
// CertReloader currently holds, so rotating the files on disk takes effect
// for new connections without a restart.
package tlsroots
