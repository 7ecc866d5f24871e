package database

import (
	"context"
	"fmt"
	"time"

	"webshop/internal/config"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// ConnectRedis opens a traced Redis client and waits until it answers PING.
func ConnectRedis(ctx context.Context, cfg config.Config, attempts int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	client.AddHook(redisotel.NewTracingHook())

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Msg("Redis connection failed, retrying...")

		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 2 * time.Second):
		}
	}
	client.Close()
	return nil, fmt.Errorf("redis connection failed after %d attempts: %w", attempts, lastErr)
}
