package config

import "time"

// CLIConfig is the configuration for respkv-cli.
type CLIConfig struct {
	// Server is the host:port of the server.
	Server string `yaml:"server"`
	// Unix is a unix socket path. It takes precedence over Server.
	Unix string `yaml:"unix,omitempty"`
	// Output is the default output format (text, json, yaml).
	Output string `yaml:"output"`
	// TLS connects with TLS. CACert replaces the system roots when set and
	// Insecure skips certificate verification.
	TLS      bool   `yaml:"tls,omitempty"`
	CACert   string `yaml:"ca_cert,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
	// Timeout bounds dialing and each command.
	Timeout time.Duration `yaml:"timeout"`
	// HistoryFile stores REPL history. Empty selects ~/.respkv/history.
	HistoryFile string `yaml:"history_file,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:6379",
		Output:  "text",
		Timeout: 5 * time.Second,
	}
}
