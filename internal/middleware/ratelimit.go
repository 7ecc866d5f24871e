package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"webshop/internal/apperr"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const rateWindow = time.Minute

// --- REDIS-BASED RATE LIMITER ---

// RedisRateLimiter is a sliding-window limiter shared by all API instances.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	logger zerolog.Logger
	now    func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, limit int, logger zerolog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, logger: logger, now: time.Now}
}

// Allow records a request for key and reports whether it stays within the limit.
// Redis failures fail open.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	now := rl.now()
	windowStart := now.Add(-rateWindow).UnixNano()

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, 2*rateWindow)

	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.Warn().Err(err).Msg("Redis rate limiter failed, allowing request")
		return true
	}

	return countCmd.Val() < int64(rl.limit)
}

// --- FALLBACK IN-MEMORY RATE LIMITER ---
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type MemoryRateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewMemoryRateLimiter allows perMinute requests per key with the given burst.
// Idle visitors are dropped until ctx is cancelled.
func NewMemoryRateLimiter(ctx context.Context, perMinute int, burst int) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(float64(perMinute) / rateWindow.Seconds()),
		burst:    burst,
	}
	go rl.cleanupVisitors(ctx)
	return rl
}

func (rl *MemoryRateLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *MemoryRateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for key, v := range rl.visitors {
			if time.Since(v.lastSeen) > 15*time.Minute {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Limiter is implemented by both rate limiters.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// NewLimiter prefers Redis and falls back to process memory.
func (mw *Middleware) NewLimiter(ctx context.Context) Limiter {
	limit := mw.app.Config.RateLimit
	if mw.app.Redis != nil {
		return NewRedisRateLimiter(mw.app.Redis, limit, mw.app.Logger)
	}
	return NewMemoryRateLimiter(ctx, limit, limit*2)
}

// RateLimit answers 429 once the client IP exceeds the limiter.
func (mw *Middleware) RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if !limiter.Allow(r.Context(), ip) {
				requestID := getRequestID(r.Context())
				mw.app.Logger.Warn().
					Str("request_id", requestID).
					Str("ip", ip).
					Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
				writeJSONError(w, requestID, apperr.FromStatus(http.StatusTooManyRequests, "Rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
