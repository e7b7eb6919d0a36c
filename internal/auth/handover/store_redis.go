package handover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mindlog/internal/auth/models"
	"mindlog/pkg/platform/sentinel"
)

const handoverKeyPrefix = "handover:token:"

// RedisStore is the multi-instance implementation: Redis expires entries
// itself and GETDEL gives the atomic remove-on-read that guarantees single
// use across server instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed handover store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, principal models.Principal, attrs models.Attributes) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate handover token: %w", err)
	}

	entry := Entry{
		Principal:  principal,
		Attributes: attrs,
		CreatedAt:  time.Now(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal handover entry: %w", err)
	}

	key := handoverKeyPrefix + token.String()
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store handover entry: %w", err)
	}
	return token.String(), nil
}

func (s *RedisStore) Consume(ctx context.Context, token string) (*Entry, error) {
	key := handoverKeyPrefix + token
	payload, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("handover token: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume handover entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, fmt.Errorf("unmarshal handover entry: %w", err)
	}
	entry.Token = token
	return &entry, nil
}
