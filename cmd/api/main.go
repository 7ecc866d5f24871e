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

	"webshop/internal/auth"
	"webshop/internal/cache"
	"webshop/internal/config"
	"webshop/internal/core"
	"webshop/internal/database"
	"webshop/internal/handlers"
	"webshop/internal/mailer"
	"webshop/internal/middleware"
	"webshop/internal/repository"
	"webshop/internal/router"
	"webshop/internal/service"
	"webshop/internal/storage"
	"webshop/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Version information (set during build)
	version   = "1.0.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// @title           Webshop API
// @version         1.0.0
// @description     Catalog, customer and order management for the webshop.

// @contact.name   API Support
// @contact.email  support@example.com

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	logger := initLogger()
	handlers.Version = version

	logger.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Str("git_commit", gitCommit).
		Str("go_version", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Msg("Starting API server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	logger = configureLogger(logger, cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tp, err := telemetry.InitTracerProvider(ctx, cfg.OtelEndpoint, "webshop-api", version)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}

	db, err := database.ConnectWithRetry(ctx, cfg.DatabaseURL, database.DefaultDatabaseConfig(), 5)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed after all retries")
	}
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database schema")
	}
	database.StartConnectionMonitoring(ctx, db)

	redisClient, err := database.ConnectRedis(ctx, cfg, 8)
	if err != nil {
		logger.Fatal().Err(err).Msg("Redis connection failed after all retries")
	}
	logger.Info().Msg("Redis client initialized")

	app := &config.Application{
		Config:         cfg,
		Logger:         logger,
		DB:             db,
		Redis:          redisClient,
		TracerProvider: tp,
	}

	objects, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	// Repositories; catalog reads go through the in-process cache.
	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	tokens := repository.NewTokenRepository(db)
	addresses := repository.NewAddressRepository(db)
	categories := cache.NewCategoryRepository(repository.NewCategoryRepository(db), cache.DefaultTTL)
	products := cache.NewProductRepository(repository.NewProductRepository(db), cache.DefaultTTL)

	issuer := auth.NewIssuer(cfg.App_Secret, cfg.TokenIssuer, cfg.GetAccessTokenTTL())

	userService := service.NewUserService(users, roles, tokens)
	imageService := service.NewImageService(repository.NewImageRepository(db), products, objects, cfg.ImageMaxBytes, logger)
	orderService := service.NewOrderService(repository.NewOrderRepository(db), addresses, users, mailer.New(cfg, logger), logger)
	// Orders change stock inside their own transaction, bypassing the cache.
	orderService.OnStockChange(products.Invalidate)

	seeder := database.NewSeeder(roles, users, userService, logger)
	if err := seeder.SeedRoles(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed roles")
	}
	if cfg.IsDevelopment() {
		if err := seeder.EnsureAdmin(ctx, cfg.DefaultAdminUsername, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
			logger.Error().Err(err).Msg("Failed to create default admin")
		}
	}

	h := handlers.New(app, handlers.Services{
		Auth:      service.NewAuthService(users, tokens, issuer, cfg.GetRefreshTokenTTL()),
		Users:     userService,
		Roles:     service.NewRoleService(roles),
		Addresses: service.NewAddressService(addresses),
		Companies: service.NewCompanyService(repository.NewCompanyRepository(db)),
		Catalog:   service.NewCatalogService(categories, products, imageService, logger),
		Images:    imageService,
		Orders:    orderService,
	})
	mw := middleware.New(app, issuer)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.Setup(app, h, mw, mw.NewLimiter(ctx)),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("env", cfg.App_Env).
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
		logger.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal, starting graceful shutdown...")

		stop()
		gracefulShutdown(srv, app, logger)
	}

	logger.Info().Msg("Server stopped gracefully")
}

func newObjectStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (core.ObjectStorage, error) {
	if !cfg.MinioEnabled() {
		logger.Warn().Msg("MinIO is not configured, image uploads are disabled")
		return storage.Disabled{}, nil
	}
	objects, err := storage.NewMinIOStorage(cfg)
	if err != nil {
		return nil, err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info().Str("bucket", cfg.MinioBucket).Msg("Image storage initialized")
	return objects, nil
}

func initLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return log.With().
		Timestamp().
		Caller().
		Str("service", "webshop-api").
		Logger()
}

// configureLogger applies LOG_LEVEL and switches to console output in development.
func configureLogger(logger zerolog.Logger, cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func gracefulShutdown(srv *http.Server, app *config.Application, logger zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv.SetKeepAlivesEnabled(false)

	logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("Shutting down OpenTelemetry TracerProvider...")
	if err := app.TracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("TracerProvider shutdown error")
	}

	app.DB.Close()
	logger.Info().Msg("Database connections closed")

	if err := app.Redis.Close(); err != nil {
		logger.Error().Err(err).Msg("Redis shutdown error")
	} else {
		logger.Info().Msg("Redis connections closed")
	}

	logger.Info().Msg("Graceful shutdown completed")
}
