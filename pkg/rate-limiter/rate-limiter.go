package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Redis keys mirror the in-memory bucket state so a restarted instance does
// not hand a throttled client a fresh burst.
const redisKeyPrefix = "ratelimit:login:"

// RateLimiter caps login attempts with one token bucket per client IP.
// Buckets live in memory and are dropped after ttl of inactivity.
type RateLimiter struct {
	client *redis.Client
	limit  rate.Limit
	burst  int
	ttl    time.Duration

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewRateLimiter(client *redis.Client, rps float64, burst int, ttl time.Duration) *RateLimiter {
	if client == nil {
		zap.L().Error("Redis client passed to NewRateLimiter is nil")
		panic("Redis client passed to NewRateLimiter is nil")
	}

	if ttl <= 0 {
		ttl = 5 * time.Minute
		zap.L().Warn("Invalid TTL provided to NewRateLimiter, defaulting", zap.Duration("default_ttl", ttl))
	}

	return &RateLimiter{
		client:  client,
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		buckets: make(map[string]*rate.Limiter),
	}
}

// bucketFor returns the limiter for ip, creating one drained to the level a
// previous instance recorded when this instance has not seen the address yet.
func (rl *RateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, ok := rl.buckets[ip]; ok {
		return bucket
	}

	bucket := rate.NewLimiter(rl.limit, rl.burst)
	if tokens := rl.restoredTokens(ip); tokens < rl.burst {
		bucket.AllowN(time.Now(), rl.burst-tokens)
	}
	rl.buckets[ip] = bucket

	time.AfterFunc(rl.ttl, func() {
		rl.mu.Lock()
		delete(rl.buckets, ip)
		rl.mu.Unlock()
	})

	return bucket
}

// restoredTokens reads the token count recorded for ip, falling back to a
// full bucket when Redis has no entry.
func (rl *RateLimiter) restoredTokens(ip string) int {
	val, err := rl.client.Get(context.Background(), redisKeyPrefix+ip).Int()
	if err == nil && val >= 0 && val <= rl.burst {
		return val
	}

	if err != nil && err != redis.Nil {
		zap.L().Error("Failed to read rate limit state from Redis", zap.String("ip", ip), zap.Error(err))
	}

	return rl.burst
}

// remember mirrors the remaining tokens to Redis off the request path.
func (rl *RateLimiter) remember(ip string, bucket *rate.Limiter) {
	tokens := int(bucket.Tokens())

	go func() {
		err := rl.client.Set(context.Background(), redisKeyPrefix+ip, tokens, rl.ttl).Err()
		if err != nil {
			zap.L().Error("Failed to write rate limit state to Redis", zap.String("ip", ip), zap.Error(err))
		}
	}()
}

// RateLimitMiddleware rejects clients that used up their attempts with 429.
func (rl *RateLimiter) RateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			zap.L().Warn("Rate limiter cannot determine client IP address")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access forbidden: cannot identify client",
			})
		}

		bucket := rl.bucketFor(ip)
		allowed := bucket.Allow()
		rl.remember(ip, bucket)

		if !allowed {
			zap.L().Warn("Login rate limit exceeded", zap.String("ip", ip))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later",
			})
		}

		return c.Next()
	}
}
