package database

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DatabaseConfig holds pool sizing and lifetime settings.
type DatabaseConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ApplicationName   string
}

// DefaultDatabaseConfig returns production-ready database configuration
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		MaxConns:          30,
		MinConns:          5,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   time.Minute * 30,
		HealthCheckPeriod: time.Minute * 5,
		ApplicationName:   "webshop-api",
	}
}

// ConnectDB creates a connection pool with the default configuration.
func ConnectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return ConnectDBWithConfig(ctx, dsn, DefaultDatabaseConfig())
}

// ConnectDBWithConfig creates a traced connection pool and verifies it with a ping.
func ConnectDBWithConfig(ctx context.Context, dsn string, dbConfig *DatabaseConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	config.MaxConns = dbConfig.MaxConns
	config.MinConns = dbConfig.MinConns
	config.MaxConnLifetime = dbConfig.MaxConnLifetime
	config.MaxConnIdleTime = dbConfig.MaxConnIdleTime
	config.HealthCheckPeriod = dbConfig.HealthCheckPeriod

	appName := dbConfig.ApplicationName
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if appName != "" {
			if _, err := conn.Exec(ctx, "SELECT set_config('application_name', $1, false)", appName); err != nil {
				log.Warn().Err(err).Msg("Failed to set application name")
			}
		}

		if _, err := conn.Exec(ctx, "SET timezone = 'UTC'"); err != nil {
			log.Warn().Err(err).Msg("Failed to set timezone")
		}

		log.Debug().Msg("Database connection established")
		return nil
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info().
		Int32("max_conns", config.MaxConns).
		Int32("min_conns", config.MinConns).
		Dur("max_conn_lifetime", config.MaxConnLifetime).
		Dur("max_conn_idle_time", config.MaxConnIdleTime).
		Msg("Database connection pool established")

	return dbpool, nil
}

// ConnectWithRetry retries ConnectDBWithConfig with a linear backoff.
func ConnectWithRetry(ctx context.Context, dsn string, dbConfig *DatabaseConfig, attempts int) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		db, err := ConnectDBWithConfig(ctx, dsn, dbConfig)
		if err == nil {
			return db, nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Msg("Database connection failed, retrying...")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
		}
	}
	return nil, fmt.Errorf("database connection failed after %d attempts: %w", attempts, lastErr)
}

// StartConnectionMonitoring logs pool statistics until ctx is cancelled.
func StartConnectionMonitoring(ctx context.Context, db *pgxpool.Pool) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			stats := db.Stat()
			log.Info().
				Int32("total_conns", stats.TotalConns()).
				Int32("acquired_conns", stats.AcquiredConns()).
				Int32("idle_conns", stats.IdleConns()).
				Int32("max_conns", stats.MaxConns()).
				Dur("acquire_duration", stats.AcquireDuration()).
				Int64("acquire_count", stats.AcquireCount()).
				Int64("canceled_acquire_count", stats.CanceledAcquireCount()).
				Msg("Database connection pool statistics")
		}
	}()
}

// HealthCheck performs a comprehensive database health check
func HealthCheck(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var version string
	if err := db.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("query test failed: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("transaction begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("transaction query failed: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// GetConnectionStats returns current connection pool statistics
func GetConnectionStats(db *pgxpool.Pool) map[string]interface{} {
	stats := db.Stat()

	return map[string]interface{}{
		"total_connections":          stats.TotalConns(),
		"acquired_connections":       stats.AcquiredConns(),
		"idle_connections":           stats.IdleConns(),
		"max_connections":            stats.MaxConns(),
		"acquire_count":              stats.AcquireCount(),
		"acquire_duration_ms":        stats.AcquireDuration().Milliseconds(),
		"canceled_acquire_count":     stats.CanceledAcquireCount(),
		"constructed_connections":    stats.ConstructingConns(),
		"empty_acquire_count":        stats.EmptyAcquireCount(),
		"max_lifetime_destroy_count": stats.MaxLifetimeDestroyCount(),
		"max_idle_destroy_count":     stats.MaxIdleDestroyCount(),
	}
}
