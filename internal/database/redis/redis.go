package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client used for catalog caching and coverage TTL
// tracking.
type Client struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(host, port, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.client
}

// EnableKeyspaceNotifications turns on keyevent expiry notifications, which
// the subscription expiration listener depends on. Best-effort: some managed
// Redis deployments disallow CONFIG SET.
func (c *Client) EnableKeyspaceNotifications(ctx context.Context) {
	if err := c.client.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		slog.Warn("Failed to enable Redis keyspace notifications, expiry listener may be inactive", "error", err)
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}
