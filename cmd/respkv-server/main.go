package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "In-memory key-value server speaking the Redis protocol",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the plaintext RESP listener (overrides server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json, text",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this .env file",
				Value: ".env",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c)
		},
	}
}

func run(ctx context.Context, c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()
	ctx = logger.WithLogger(ctx, log)

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", c.String("config"))

	metrics := metric.Global()
	store := memory.New(
		memory.WithShardCount(cfg.Storage.ShardCount),
		memory.WithExpireHook(func(mode memory.ExpireMode, n int) {
			metrics.AddKeysExpired(string(mode), n)
		}),
	)
	if err := metrics.Register(metric.NewCollector(store)); err != nil {
		return fmt.Errorf("register key collector: %w", err)
	}

	redisCfg, certReloader, err := config.RedisServerConfig(&cfg.Server.Redis, slogLogger.With("component", "tls"))
	if err != nil {
		return fmt.Errorf("redis config: %w", err)
	}
	redisServer := redisserver.New(redisCfg, store, metrics, slogLogger.With("component", "redis"))

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(slogLogger.With("component", "shutdown")))
	g, gctx := errgroup.WithContext(ctx)

	if certReloader != nil {
		certReloader.StartAsync()
		shutdownHandler.OnShutdown("tls-reloader", func(context.Context) error {
			certReloader.Stop()
			return nil
		})
	}

	// Hooks run in reverse order: the sweeper stops last, once no client
	// can write any more.
	if cfg.Storage.SweepInterval > 0 {
		sweeper := memory.NewSweeper(store, cfg.Storage.SweepInterval, cfg.Storage.SweepBatch,
			slogLogger.With("component", "sweeper"))
		sweeper.Start()
		shutdownHandler.OnShutdown("sweeper", func(ctx context.Context) error {
			log.Info("stopping expiration sweeper")
			sweeper.Stop()
			return nil
		})
	}

	var ready atomic.Bool
	if cfg.Server.Metrics.Enabled {
		httpServer := httpserver.New(cfg.Server.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: metrics,
			Ready:   ready.Load,
			Logger:  slogLogger.With("component", "http"),
		}))
		g.Go(func() error {
			log.Info("metrics server listening", "addr", cfg.Server.Metrics.Addr)
			if err := httpServer.ListenAndServe(); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return httpServer.Shutdown(ctx)
		})
	}

	if err := redisServer.Start(gctx); err != nil {
		_ = shutdownHandler.Shutdown()
		return fmt.Errorf("start redis server: %w", err)
	}
	ready.Store(true)
	shutdownHandler.OnShutdown("redis", func(ctx context.Context) error {
		log.Info("shutting down redis server", "connections", redisServer.ConnCount())
		ready.Store(false)
		return redisServer.Shutdown(ctx)
	})

	if path := c.String("config"); path != "" {
		watcher, err := watchLogLevel(ctx, path, c)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	g.Go(func() error {
		log.Info("server started, press Ctrl+C to stop")
		return shutdownHandler.Wait(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// loadConfig applies, in increasing priority: defaults, the config file,
// environment variables (with the optional .env file) and flags.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithDotEnv(c.String("env-file")),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := loader.LoadMap(flagOverrides(c)); err != nil {
		return nil, err
	}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if c.IsSet("port") {
		if err := config.ApplyPort(cfg, c.Int("port")); err != nil {
			return nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		overrides["log.format"] = c.String("log-format")
	}
	return overrides
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// watchLogLevel re-applies log.level whenever the config file changes.
// A --log-level flag pins the level and disables the reload.
func watchLogLevel(ctx context.Context, path string, c *cli.Context) (*confloader.Watcher, error) {
	if c.IsSet("log-level") {
		return nil, errors.New("log level pinned by --log-level")
	}

	log := logger.FromContext(ctx).With("component", "config")
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg := config.Default()
		if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		log.Info("log level reloaded", "level", logger.GetLevel())
	})
	w.StartAsync()
	return w, nil
}
