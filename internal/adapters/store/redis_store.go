package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/repositories"
	redisclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/redis"
)

const conversationKeyPrefix = "conversation:"

// RedisStore persists conversations in Redis as JSON, so a restart or a
// second instance picks up in-flight surveys.
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed conversation store. A zero ttl
// keeps conversations until they are deleted.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) repositories.ConversationStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func conversationKey(userID string) string {
	return conversationKeyPrefix + userID
}

// Get returns the conversation for the user, or (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, userID string) (*entities.Conversation, error) {
	data, err := s.client.Client().Get(ctx, conversationKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation from redis: %w", err)
	}

	var conv entities.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

// Put stores the conversation, replacing any existing one for the user.
func (s *RedisStore) Put(ctx context.Context, conversation *entities.Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := s.client.Client().Set(ctx, conversationKey(conversation.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to put conversation in redis: %w", err)
	}
	return nil
}

// Delete removes the conversation for the user. Deleting a missing
// conversation is not an error.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Client().Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation from redis: %w", err)
	}
	return nil
}
