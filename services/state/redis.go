package state

import (
	"context"
	"encoding/json"
	"time"

	"flybot/models"

	"github.com/go-redis/redis/v8"
)

const conversationPrefix = "bot:conv:"

// RedisStore keeps conversation state in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.ConversationState, error) {
	data, err := s.client.Get(ctx, conversationPrefix+key).Result()
	if err == redis.Nil {
		return &models.ConversationState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var st models.ConversationState
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, st *models.ConversationState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, conversationPrefix+key, b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, conversationPrefix+key).Err()
}
