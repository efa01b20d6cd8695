package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/pkg/cmap"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyRedis(&cfg.Server.Redis); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Server.Metrics); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyRedis(cfg *RedisConfig) error {
	if !cfg.Enabled && cfg.TLSAddr == "" && cfg.UnixSocket == "" {
		return errors.New("server.redis: no listener enabled")
	}
	if cfg.Enabled {
		if err := verifyAddr("server.redis.addr", cfg.Addr); err != nil {
			return err
		}
	}
	if cfg.TLSAddr != "" {
		if err := verifyAddr("server.redis.tls_addr", cfg.TLSAddr); err != nil {
			return err
		}
		if cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
			return errors.New("server.redis: tls_addr requires both tls_cert_file and tls_key_file")
		}
		if cfg.Enabled && cfg.TLSAddr == cfg.Addr {
			return errors.New("server.redis: addr and tls_addr must differ")
		}
	}
	if cfg.MaxConnections < 0 {
		return errors.New("server.redis.max_connections must not be negative")
	}
	if cfg.IdleTimeout < 0 {
		return errors.New("server.redis.idle_timeout must not be negative")
	}
	if cfg.WriteTimeout < 0 {
		return errors.New("server.redis.write_timeout must not be negative")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.redis.rate_limit must not be negative")
	}
	if cfg.ReadBufferSize < 0 {
		return errors.New("server.redis.read_buffer_size must not be negative")
	}
	return nil
}

func verifyMetrics(cfg *MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("server.metrics.addr", cfg.Addr)
}

func verifyStorage(cfg *StorageSection) error {
	if !cmap.IsValidShardCount(cfg.ShardCount) {
		return fmt.Errorf("storage.shard_count must be a power of two, got %d", cfg.ShardCount)
	}
	if cfg.SweepInterval < 0 {
		return errors.New("storage.sweep_interval must not be negative")
	}
	if cfg.SweepBatch < 1 {
		return errors.New("storage.sweep_batch must be at least 1")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level must be one of %s", strings.Join(logger.Levels, ", "))
	}
	if !slices.Contains(logger.Formats, strings.ToLower(cfg.Format)) {
		return fmt.Errorf("log.format must be one of %s", strings.Join(logger.Formats, ", "))
	}
	return nil
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%s: invalid port %q", field, port)
	}
	return nil
}

// ApplyPort replaces the port of server.redis.addr, keeping its host.
func ApplyPort(cfg *ServerConfig, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	host, _, err := net.SplitHostPort(cfg.Server.Redis.Addr)
	if err != nil {
		return fmt.Errorf("server.redis.addr: %w", err)
	}
	cfg.Server.Redis.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return nil
}
