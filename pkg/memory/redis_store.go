package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore persists conversation snapshots in Redis, one key per session
type RedisStore struct {
	client    *redis.Client
	sessionID string
	keyPrefix string
	ttl       time.Duration
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithTTL sets the expiry for stored snapshots
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStore) {
		r.ttl = ttl
	}
}

// WithKeyPrefix sets a custom prefix for snapshot keys
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStore) {
		r.keyPrefix = prefix
	}
}

// NewRedisStore creates a Redis-backed snapshot store for a session
func NewRedisStore(client *redis.Client, sessionID string, options ...RedisOption) *RedisStore {
	store := &RedisStore{
		client:    client,
		sessionID: sessionID,
		keyPrefix: "agent:conversation:",
		ttl:       24 * time.Hour,
	}

	for _, option := range options {
		option(store)
	}

	return store
}

func (r *RedisStore) key() string {
	return r.keyPrefix + r.sessionID
}

// Save writes the snapshot under the session key with the configured TTL
func (r *RedisStore) Save(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key(), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot in redis: %w", err)
	}
	return nil
}

// Load reads the snapshot stored under the session key
func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: session %s", ErrNoSnapshot, r.sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
