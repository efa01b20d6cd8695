package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP server.
type RedisConfig struct {
	// Enabled turns the plaintext TCP listener on.
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// TLSAddr opens a TLS listener when set. TLSCertFile and TLSKeyFile
	// must then both be set.
	TLSAddr     string `koanf:"tls_addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// UnixSocket opens a unix domain socket listener at this path.
	UnixSocket string `koanf:"unix_socket"`

	// MaxConnections caps concurrent clients. 0 means unlimited.
	MaxConnections int `koanf:"max_connections"`
	// IdleTimeout closes silent clients. 0 means never.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	// WriteTimeout bounds each reply flush. 0 means no bound.
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// RateLimit is commands per second per connection. 0 disables it.
	RateLimit      int `koanf:"rate_limit"`
	ReadBufferSize int `koanf:"read_buffer_size"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// ShardCount must be a power of two.
	ShardCount int `koanf:"shard_count"`
	// SweepInterval is the active expiration period. 0 disables it and
	// leaves expiration to reads.
	SweepInterval time.Duration `koanf:"sweep_interval"`
	// SweepBatch is the most expired keys removed per shard per sweep.
	SweepBatch int `koanf:"sweep_batch"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
