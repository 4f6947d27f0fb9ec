package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

// RedisStore keeps UI state as plain text values
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings with a 5 second limit
func NewRedisStore(ctx context.Context, opts *redis.Options, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context, key string) (uistate.State, error) {
	text, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uistate.State{}, uistate.ErrNotFound
	}
	if err != nil {
		return uistate.State{}, fmt.Errorf("%w: %v", uistate.ErrPersistence, err)
	}
	return uistate.Unmarshal(text), nil
}

func (r *RedisStore) Save(ctx context.Context, key string, s uistate.State) error {
	if err := r.client.Set(ctx, key, uistate.Marshal(s), r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", uistate.ErrPersistence, err)
	}
	return nil
}

func (r *RedisStore) IsHealthy(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
