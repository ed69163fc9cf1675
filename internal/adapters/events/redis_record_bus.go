// Package events implements record distribution over Redis Pub/Sub, so
// delivery can run in a different process than the bot transport.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	redisclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/redis"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
)

const (
	recordChannel  = "feedback:records"
	publishTimeout = 5 * time.Second
)

// RedisRecordBus implements RecordDispatcher over Redis Pub/Sub. Dispatch
// publishes the record; consumers deliver it to the sink on their side.
type RedisRecordBus struct {
	client *redisclient.Client

	mu     sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisRecordBus creates a record bus on the shared Redis client.
func NewRedisRecordBus(client *redisclient.Client) *RedisRecordBus {
	return &RedisRecordBus{client: client}
}

var _ providers.RecordDispatcher = (*RedisRecordBus)(nil)

// Dispatch publishes the record without blocking the caller. Publish
// failures are logged; the record is lost, same as a full local queue.
func (b *RedisRecordBus) Dispatch(record *entities.FeedbackRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		data, err := json.Marshal(record)
		if err != nil {
			observability.GetLogger().Error().
				Err(err).
				Str("record_id", record.ID).
				Msg("Failed to marshal feedback record for publishing")
			return
		}

		if err := b.client.Client().Publish(ctx, recordChannel, data).Err(); err != nil {
			observability.GetLogger().Error().
				Err(err).
				Str("record_id", record.ID).
				Msg("Failed to publish feedback record")
		}
	}()
}

// Consume subscribes to the record channel and forwards every record to
// the local dispatcher until ctx is cancelled. Malformed payloads are
// logged and skipped.
func (b *RedisRecordBus) Consume(ctx context.Context, local providers.RecordDispatcher) error {
	b.mu.Lock()
	if b.pubsub != nil {
		b.mu.Unlock()
		return fmt.Errorf("record bus already consuming")
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	pubsub := b.client.Client().Subscribe(consumeCtx, recordChannel)
	b.pubsub = pubsub
	b.cancel = cancel
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ch := pubsub.Channel()
		for {
			select {
			case <-consumeCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var record entities.FeedbackRecord
				if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
					observability.GetLogger().Warn().
						Err(err).
						Msg("Dropping malformed feedback record from bus")
					continue
				}
				local.Dispatch(&record)
			}
		}
	}()

	return nil
}

// Close stops the consumer, if any, and closes the subscription.
func (b *RedisRecordBus) Close() error {
	b.mu.Lock()
	pubsub := b.pubsub
	cancel := b.cancel
	b.pubsub = nil
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pubsub != nil {
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close record bus subscription: %w", err)
		}
	}
	b.wg.Wait()
	return nil
}
