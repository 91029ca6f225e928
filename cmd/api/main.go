// Package main is the entrypoint for the Canteen Rush API server.
//
// Usage:
//
//	api [serve]            run the HTTP API (default)
//	api migrate            apply pending migrations and exit
//	api migrate version    print the applied schema version
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/canteenrush/canteenrush/internal/cache"
	"github.com/canteenrush/canteenrush/internal/config"
	"github.com/canteenrush/canteenrush/internal/handler"
	"github.com/canteenrush/canteenrush/internal/metrics"
	"github.com/canteenrush/canteenrush/internal/middleware"
	"github.com/canteenrush/canteenrush/internal/predict"
	"github.com/canteenrush/canteenrush/internal/repository"
	"github.com/canteenrush/canteenrush/internal/server"
	"github.com/canteenrush/canteenrush/internal/service"
	"github.com/canteenrush/canteenrush/internal/worker/queuemon"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		err = serve(context.Background(), cfg, logger)
	case "migrate":
		err = migrate(cfg, logger, args)
	default:
		err = fmt.Errorf("unknown command %q (want serve or migrate)", command)
	}

	if err != nil {
		logger.Error("exiting", "command", command, "error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL))
		os.Exit(1)
	}
}

func migrate(cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) > 0 && args[0] == "version" {
		version, dirty, err := repository.MigrationVersion(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		logger.Info("schema version", "version", version, "dirty", dirty)
		return nil
	}

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	logger.Info("migrations applied", "database_url", redactURL(cfg.DatabaseURL))
	return nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if cfg.MigrateOnStart {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return errors.New("redis unavailable")
	}
	logger.Info("connected to Redis")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	// Initialize services
	predictor := predict.New(repo, predict.WithLocation(loc))
	orderService := service.NewOrderService(repo, predictor, recorder)
	accountService := service.NewAccountService(repo, cacheClient, cfg.SessionTTL, recorder)
	menuService := service.NewMenuService(repo, predictor)
	adminService := service.NewAdminService(repo)

	// Initialize handlers
	router := server.NewRouter(server.Routes{
		Logger:         logger,
		Metrics:        recorder,
		MetricsHandler: metrics.Handler(registry),
		Index:          handler.New(),
		Health:         handler.NewHealthHandler(repo, cacheClient),
		Accounts:       handler.NewAccountHandler(accountService, logger),
		Orders:         handler.NewOrderHandler(orderService, menuService, cacheClient, cfg.SessionTTL, logger),
		Menus:          handler.NewMenuHandler(menuService, logger),
		Admin:          handler.NewAdminHandler(adminService, logger),
		Authenticator:  accountService,
		RateLimit: middleware.RateLimitConfig{
			Logger:      logger,
			Limiter:     cacheClient,
			Enabled:     cfg.RateLimitEnabled,
			LoginRPS:    cfg.RateLimitLoginRPS,
			LoginBurst:  cfg.RateLimitLoginBurst,
			OrdersRPM:   cfg.RateLimitOrdersRPM,
			OrdersBurst: cfg.RateLimitOrdersBurst,
		},
		CORS:     corsConfig(cfg),
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first so they close last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	// Background queue monitor
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	monitor := queuemon.New(repo, logger, recorder, cfg.QueueMonitorInterval)
	go func() {
		if err := monitor.Run(monitorCtx); err != nil {
			logger.Error("queue monitor stopped", "error", err)
		}
	}()
	srv.OnShutdown("queue monitor", func(ctx context.Context) error {
		stopMonitor()
		select {
		case <-monitor.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"timezone", loc.String(),
	)

	return srv.Run(ctx)
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	return cors
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "canteenrush")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError replaces every secret URL in err with its redacted form.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
