// Package suite starts throwaway backing services for integration tests.
package suite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	expireSeconds = 120
	maxWait       = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

type Suite struct {
	*testing.T
	Logger zerolog.Logger

	Redis *redis.Client
}

// NewRedis runs redis:alpine in docker and returns a flushed client.
// Setting REDIS_ADDR skips docker and uses that server instead.
func NewRedis(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	t.Cleanup(cancel)

	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			t.Fatalf("redis at %s is not reachable: %v", addr, err)
		}
		return ctx, newSuite(ctx, t, logger, rdb)
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}
	_ = resource.Expire(expireSeconds)

	pool.MaxWait = maxWait
	hostPort := resource.GetHostPort(redisPort)

	var rdb *redis.Client
	if err = pool.Retry(func() error {
		rdb = redis.NewClient(&redis.Options{Addr: hostPort})
		return rdb.Ping(ctx).Err()
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis: %v", err)
		}
	})
	return ctx, newSuite(ctx, t, logger, rdb)
}

func newSuite(ctx context.Context, t *testing.T, logger zerolog.Logger, rdb *redis.Client) *Suite {
	t.Helper()
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return &Suite{T: t, Logger: logger, Redis: rdb}
}
