package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/delordemm1/go-sprints-api/internal/cache"
	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/database"
	"github.com/delordemm1/go-sprints-api/internal/metrics"
	"github.com/delordemm1/go-sprints-api/internal/modules/content"
	"github.com/delordemm1/go-sprints-api/internal/modules/settings"
	"github.com/delordemm1/go-sprints-api/internal/modules/user"
	"github.com/delordemm1/go-sprints-api/internal/notification"
	"github.com/delordemm1/go-sprints-api/internal/notification/templates"
	"github.com/delordemm1/go-sprints-api/internal/server"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Options for the CLI.
type Options struct {
	Port  int `help:"Port to listen on, overrides SERVER_PORT" short:"p"`
	Sweep int `help:"Minutes between expired token sweeps, 0 disables" default:"15"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
		logger.Info("configuration loaded successfully", "env", cfg.Server.Env, "publicUrl", cfg.Auth.PublicURL)

		ctx := context.Background()

		// --- Database & Cache ---
		dbPool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		closers := []func(){dbPool.Close}

		settingsCfg := &settings.Config{
			Repo:   settings.NewRepository(dbPool),
			Logger: logger,
			Config: cfg,
		}
		var cooldown user.Cooldown
		if cfg.Redis.URL != "" {
			redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
			if err != nil {
				logger.Error("failed to connect to redis", "error", err)
				os.Exit(1)
			}
			closers = append(closers, func() { _ = redisClient.Close() })
			logger.Info("successfully connected to redis")

			settingsCfg.Cache = redisClient
			if cfg.Auth.SignInCooldown > 0 {
				cooldown = cache.NewCooldown(redisClient, "signin:cooldown:", cfg.Auth.SignInCooldown)
			}
		} else {
			logger.Warn("REDIS_URL not set, settings cache and sign-in cooldown disabled")
		}

		// --- Observability ---
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appMetrics := metrics.New(registry)

		// --- Notification ---
		engine := templates.NewEngine(templates.Config{Dir: cfg.Templates.Dir, Reload: cfg.Templates.Reload}, logger)
		if err := engine.Check(ctx, templates.Scenarios...); err != nil {
			logger.Error("notification templates are broken", "error", err)
			os.Exit(1)
		}
		notifier := notification.NewService(logger, engine, notification.NewSMTPEmailSender(logger))

		// --- Module Initialization (Bottom-Up) ---
		settingsCfg.Notifier = notifier
		settingsService := settings.NewService(settingsCfg)

		minter, err := session.NewMinter(cfg.Auth.Secret, session.Config{
			MaxAge:    cfg.Auth.SessionMaxAge,
			UpdateAge: cfg.Auth.SessionUpdateAge,
		})
		if err != nil {
			logger.Error("failed to create session minter", "error", err)
			os.Exit(1)
		}
		csrf, err := session.NewCSRF(cfg.Auth.Secret)
		if err != nil {
			logger.Error("failed to create csrf guard", "error", err)
			os.Exit(1)
		}

		userService := user.NewService(&user.Config{
			Repo:      user.NewRepository(dbPool),
			Minter:    minter,
			Notifier:  notifier,
			Transport: settingsService,
			Cooldown:  cooldown,
			Google:    user.NewGoogleProvider(cfg.Google),
			Metrics:   appMetrics,
			Logger:    logger,
			Config:    cfg,
		})
		contentService := content.NewService(&content.Config{
			Repo:   content.NewRepository(dbPool),
			Logger: logger,
		})

		router := server.New(cfg, logger, server.Deps{
			Users:    userService,
			Content:  contentService,
			Settings: settingsService,
			Minter:   minter,
			CSRF:     csrf,
			Metrics:  appMetrics,
		})

		port := cfg.Server.Port
		if options.Port != 0 {
			port = fmt.Sprint(options.Port)
		}
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sweepCtx, stopSweep := context.WithCancel(ctx)
		hooks.OnStart(func() {
			if options.Sweep > 0 {
				go sweep(sweepCtx, userService, time.Duration(options.Sweep)*time.Minute, logger)
			}
			logger.Info("starting server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server failed to start", "error", err)
				os.Exit(1)
			}
		})
		hooks.OnStop(func() {
			stopSweep()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown failed", "error", err)
			}
			// Close in reverse order of construction.
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		})
	})
	cli.Run()
}

// sweep deletes expired verification tokens and OAuth states until ctx ends.
func sweep(ctx context.Context, users user.Service, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokens, states, err := users.SweepExpired(ctx)
			if err != nil {
				logger.Warn("expired credential sweep failed", "error", err)
				continue
			}
			if tokens > 0 || states > 0 {
				logger.Info("swept expired credentials", "tokens", tokens, "states", states)
			}
		}
	}
}
