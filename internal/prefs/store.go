// Package prefs keeps per-client dashboard preferences in Redis: the last
// location a client looked up and its preferred unit system.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/weatherflow/internal/weather"
)

const (
	// DefaultTTL keeps preferences for thirty days after the last write.
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix = "weatherflow:prefs:"
)

// Preferences is what a client last asked for.
type Preferences struct {
	LastLocation string             `json:"last_location"`
	Units        weather.UnitSystem `json:"units"`
}

// Store wraps a Redis client with typed get/save/delete for preferences.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Store. A non-positive ttl falls back to DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func key(clientID string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(clientID))
}

// Get returns the stored preferences for clientID.
// Returns nil, nil when nothing is stored.
func (s *Store) Get(ctx context.Context, clientID string) (*Preferences, error) {
	val, err := s.client.Get(ctx, key(clientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("prefs get for client %s: %w", clientID, err)
	}

	var p Preferences
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("unmarshaling prefs for client %s: %w", clientID, err)
	}
	return &p, nil
}

// Save stores p for clientID and resets its TTL.
func (s *Store) Save(ctx context.Context, clientID string, p Preferences) error {
	if strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("saving prefs: %w: empty client id", weather.ErrInvalidInput)
	}

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling prefs for client %s: %w", clientID, err)
	}

	if err := s.client.Set(ctx, key(clientID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("prefs set for client %s: %w", clientID, err)
	}
	return nil
}

// Delete forgets clientID's preferences.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, key(clientID)).Err(); err != nil {
		return fmt.Errorf("prefs delete for client %s: %w", clientID, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
