package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	conv, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	conv := entities.NewConversation("42")
	conv.Set(entities.AnswerExpectations, "Да")
	require.NoError(t, s.Put(ctx, conv))

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.StepExpectations, got.Step)
	assert.Equal(t, "Да", got.Get(entities.AnswerExpectations))

	require.NoError(t, s.Delete(ctx, "42"))

	got, err = s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_PutReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := entities.NewConversation("42")
	first.Step = entities.StepRating
	require.NoError(t, s.Put(ctx, first))

	second := entities.NewConversation("42")
	require.NoError(t, s.Put(ctx, second))

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, entities.StepExpectations, got.Step)
}

func TestMemoryStore_DeleteMissing(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Delete(context.Background(), "nobody"))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := string(rune('a' + n%10))
			_ = s.Put(ctx, entities.NewConversation(userID))
			_, _ = s.Get(ctx, userID)
			_ = s.Delete(ctx, userID)
		}(i)
	}
	wg.Wait()
}
