package config

import (
	"log/slog"

	"github.com/yndnr/respkv/internal/infra/tlsroots"
	"github.com/yndnr/respkv/internal/server/redisserver"
)

// RedisServerConfig converts the redis section to the server's runtime
// config. When a TLS listener is configured it also loads the key pair
// into a CertReloader, which the caller starts to pick up certificate
// rotation; the reloader is nil otherwise.
func RedisServerConfig(cfg *RedisConfig, logger *slog.Logger) (*redisserver.Config, *tlsroots.CertReloader, error) {
	out := &redisserver.Config{
		PlainEnabled:   cfg.Enabled,
		PlainAddress:   cfg.Addr,
		TLSAddress:     cfg.TLSAddr,
		UnixSocket:     cfg.UnixSocket,
		MaxConnections: cfg.MaxConnections,
		IdleTimeout:    cfg.IdleTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		RateLimit:      cfg.RateLimit,
		ReadBufferSize: cfg.ReadBufferSize,
	}
	if cfg.TLSAddr == "" {
		return out, nil, nil
	}

	if logger == nil {
		logger = slog.Default()
	}
	reloader, err := tlsroots.NewCertReloader(cfg.TLSCertFile, cfg.TLSKeyFile, tlsroots.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	out.TLSConfig = reloader.ServerConfig()
	return out, reloader, nil
}
