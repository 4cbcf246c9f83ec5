package prefs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// clientName tags the connection in CLIENT LIST so preference traffic is
// easy to tell apart on a shared Redis.
const clientName = "weatherflow-prefs"

// Connect opens the Redis client backing the preference store. It parses
// redisURL, names the connection and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = clientName
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
