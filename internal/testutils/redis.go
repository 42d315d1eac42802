package testutils

import (
	"context"
	"os"
	"strconv"
	"testing"

	"terminal-terrace/sse-share/pkg/database"
)

// SetupTestRedis creates a test Redis connection
// Skips the test when Redis is not reachable
func SetupTestRedis(t *testing.T) *database.RedisClient {
	t.Helper()

	port, err := strconv.Atoi(getEnvOrDefault("REDIS_PORT", "6380"))
	if err != nil || port == 0 {
		port = 6380
	}

	client, err := database.InitRedis(context.Background(), &database.RedisConfig{
		ServiceName: "sse-share-test",
		Host:        getEnvOrDefault("REDIS_HOST", "localhost"),
		Port:        port,
	})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		_ = client.Close()
	})
	return client
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
