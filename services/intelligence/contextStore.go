package intelligence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const contextPrefix = "conv:ctx:"

// maxHistoryTurns bounds the context handed to the extractor.
const maxHistoryTurns = 10

// RedisContextStore keeps the recent conversation turns per user so the
// extractor can resolve references like "the second one".
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, userID string) ([]string, error) {
	data, err := s.client.Get(ctx, contextPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var history []string
	if err := json.Unmarshal([]byte(data), &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *RedisContextStore) Append(ctx context.Context, userID, turn string) error {
	history, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	history = append(history, turn)
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	b, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, contextPrefix+userID, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, contextPrefix+userID).Err()
}
