package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"webshop/internal/config"
	"webshop/internal/database"
	"webshop/internal/middleware"
	"webshop/internal/telemetry"
	"webshop/internal/web"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/controllers"
	"webshop/internal/web/session"
	"webshop/internal/web/tokens"
	"webshop/internal/web/views"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := log.With().Timestamp().Caller().Str("service", "webshop-web").Logger()

	logger.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Str("go_version", runtime.Version()).
		Msg("Starting web front-end")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateWeb(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.IsDevelopment() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tp, err := telemetry.InitTracerProvider(ctx, cfg.OtelEndpoint, "webshop-web", version)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg, 8)
	if err != nil {
		logger.Fatal().Err(err).Msg("Redis connection failed after all retries")
	}

	app := &config.Application{
		Config:         cfg,
		Logger:         logger,
		Redis:          redisClient,
		TracerProvider: tp,
	}

	api := apiclient.New(cfg.APIBaseURL, &http.Client{
		Timeout:   apiclient.DefaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	state := session.NewStateManager(
		session.NewManager(redisClient, cfg.GetSessionLifetime(), cfg.CookieSecure),
		api,
		tokens.NewValidator(tokens.DefaultSkew),
		logger,
	)
	renderer, err := views.New(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to parse templates")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebPort),
		Handler:           web.Router(app, controllers.New(api, state, renderer, logger), state, middleware.New(app, nil)),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.WebPort).
			Str("api", cfg.APIBaseURL).
			Msg("Starting HTTP server")
		serverErrors <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("TracerProvider shutdown error")
		}
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Redis shutdown error")
		}
	}

	logger.Info().Msg("Server stopped gracefully")
}
