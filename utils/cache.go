// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"tutorbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// AvailabilityCacheClient caches projected bookable windows.
	AvailabilityCacheClient *redis.Client
)

// InitAvailabilityCache initializes the Redis client for availability caching.
func InitAvailabilityCache() {
	AvailabilityCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := AvailabilityCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Availability Cache): %v", err)
	}
}

// GetAvailabilityCacheClient returns the availability cache client.
func GetAvailabilityCacheClient() *redis.Client {
	if AvailabilityCacheClient == nil {
		InitAvailabilityCache()
	}
	return AvailabilityCacheClient
}
