package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/interview-coach/internal/pipeline"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "interview:session:"

// RedisStore keeps sessions as JSON with a TTL so several API instances can
// share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state pipeline.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (pipeline.State, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	return decode(data, err)
}

func (s *RedisStore) Take(ctx context.Context, id string) (pipeline.State, error) {
	data, err := s.client.GetDel(ctx, keyPrefix+id).Bytes()
	return decode(data, err)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decode(data []byte, err error) (pipeline.State, error) {
	if errors.Is(err, redis.Nil) {
		return pipeline.State{}, ErrNotFound
	}
	if err != nil {
		return pipeline.State{}, fmt.Errorf("read session: %w", err)
	}

	var state pipeline.State
	if err := json.Unmarshal(data, &state); err != nil {
		return pipeline.State{}, fmt.Errorf("decode session: %w", err)
	}
	return state, nil
}
