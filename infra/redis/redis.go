package redisdb

import (
	"context"
	"time"

	"github.com/nammapaisa/server/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dialTimeout   = 5 * time.Second
	retryInterval = 5 * time.Second
	pingInterval  = 10 * time.Second
)

// New builds the client backing the login rate limiter and verifies the
// server answers before handing it out.
func New(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.REDIS_ADDRESS,
		Password:     cfg.REDIS_PASSWORD,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  dialTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// WaitForRedis blocks until a connection succeeds. Boot does not proceed
// without Redis because login throttling depends on it.
func WaitForRedis(cfg *config.Config) *redis.Client {
	for {
		client, err := New(cfg)
		if err == nil {
			zap.L().Info("Connected to Redis", zap.String("address", cfg.REDIS_ADDRESS))
			return client
		}

		zap.L().Error("Redis unreachable, retrying",
			zap.Duration("retry_in", retryInterval),
			zap.Error(err),
		)
		time.Sleep(retryInterval)
	}
}

// KeepAlive pings on an interval and swaps in a fresh client when the
// connection drops. The double pointer lets the caller keep using one
// handle across reconnects.
func KeepAlive(client **redis.Client, cfg *config.Config) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		err := (*client).Ping(ctx).Err()
		cancel()

		if err == nil {
			continue
		}

		zap.L().Warn("Redis ping failed, reconnecting", zap.Error(err))
		(*client).Close()
		*client = WaitForRedis(cfg)
	}
}
