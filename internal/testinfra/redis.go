package testinfra

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"os"
	"sync"
	"testing"
)

const (
	redisImage = "redis:7-alpine"
	redisPort  = "6379/tcp"
)

var (
	redisOnce sync.Once
	redisAddr string
	redisErr  error
)

// NewRedis returns a client on TEST_REDIS_ADDR or on a throwaway container.
// Keys are not flushed, tests should use unique names.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis test skipped in short mode")
	}

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		redisOnce.Do(func() {
			redisAddr, redisErr = startRedis()
		})
		if redisErr != nil {
			t.Skipf("redis container not started: %v", redisErr)
		}
		addr = redisAddr
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func startRedis() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{redisPort},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort(redisPort),
			).WithStartupTimeout(startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("create redis container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, redisPort, "")
	if err != nil {
		return "", fmt.Errorf("redis endpoint: %w", err)
	}
	return endpoint, nil
}
