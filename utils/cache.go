// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"salonflow/config"
)

var (
	// SessionCacheClient is the dedicated client for scheduling-session durability.
	SessionCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client backing the session durability store.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Session Cache): %v", err)
	}
}

// GetSessionCacheClient returns the session durability client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}
