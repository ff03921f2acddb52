package utils

import (
	"context"
	"log"
	"time"

	"skybook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds live booking sessions.
	SessionCacheClient *redis.Client
	// FareCacheClient holds flight search results keyed by fingerprint.
	FareCacheClient *redis.Client
	// ContextCacheClient holds conversation context for the extractor.
	ContextCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// InitRedis initializes all Redis clients.
func InitRedis() {
	SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB)
	FareCacheClient = newRedisClient(config.AppConfig.RedisFareDB)
	ContextCacheClient = newRedisClient(config.AppConfig.RedisContextDB)
}

// GetSessionCacheClient returns the client for booking sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB)
	}
	return SessionCacheClient
}

// GetFareCacheClient returns the client for cached fares.
func GetFareCacheClient() *redis.Client {
	if FareCacheClient == nil {
		FareCacheClient = newRedisClient(config.AppConfig.RedisFareDB)
	}
	return FareCacheClient
}

// GetContextCacheClient returns the client for conversation context.
func GetContextCacheClient() *redis.Client {
	if ContextCacheClient == nil {
		ContextCacheClient = newRedisClient(config.AppConfig.RedisContextDB)
	}
	return ContextCacheClient
}
