package config

import (
	"time"

	"github.com/yndnr/respkv/pkg/cmap"
)

// Default configuration values.
const (
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultReadBufferSize = 16 * 1024
	DefaultMetricsAddr    = "127.0.0.1:9121"

	DefaultShardCount    = cmap.DefaultShardCount
	DefaultSweepInterval = 100 * time.Millisecond
	DefaultSweepBatch    = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Enabled:        true,
				Addr:           DefaultRedisAddr,
				ReadBufferSize: DefaultReadBufferSize,
			},
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    DefaultMetricsAddr,
			},
		},
		Storage: StorageSection{
			ShardCount:    DefaultShardCount,
			SweepInterval: DefaultSweepInterval,
			SweepBatch:    DefaultSweepBatch,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
