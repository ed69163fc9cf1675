package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

type capturingSink struct {
	mu      sync.Mutex
	records []*entities.FeedbackRecord
	err     error
	block   chan struct{}
}

func (s *capturingSink) Append(ctx context.Context, record *entities.FeedbackRecord) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *capturingSink) delivered() []*entities.FeedbackRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entities.FeedbackRecord(nil), s.records...)
}

type capturingObserver struct {
	mu      sync.Mutex
	records []*entities.FeedbackRecord
}

func (o *capturingObserver) NotifyRecord(_ context.Context, record *entities.FeedbackRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func record(id string) *entities.FeedbackRecord {
	return &entities.FeedbackRecord{ID: id, UserID: "42", Row: []string{id}}
}

func TestAsyncDispatcher_DeliversAll(t *testing.T) {
	sink := &capturingSink{}
	d := NewAsyncDispatcher(sink, Options{Workers: 2, Buffer: 16, SinkName: "test"})

	for i := 0; i < 10; i++ {
		d.Dispatch(record(fmt.Sprintf("r%d", i)))
	}
	require.NoError(t, d.Close())

	assert.Len(t, sink.delivered(), 10)
}

func TestAsyncDispatcher_NotifiesObserver(t *testing.T) {
	sink := &capturingSink{}
	obs := &capturingObserver{}
	d := NewAsyncDispatcher(sink, Options{Workers: 1, Buffer: 4, SinkName: "test", Notifier: obs})

	d.Dispatch(record("r1"))
	require.NoError(t, d.Close())

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Len(t, obs.records, 1)
	assert.Equal(t, "r1", obs.records[0].ID)
}

func TestAsyncDispatcher_SinkErrorDoesNotStopWorkers(t *testing.T) {
	sink := &capturingSink{err: fmt.Errorf("sink down")}
	d := NewAsyncDispatcher(sink, Options{Workers: 1, Buffer: 4, SinkName: "test"})

	d.Dispatch(record("r1"))
	d.Dispatch(record("r2"))
	require.NoError(t, d.Close())

	assert.Empty(t, sink.delivered())
}

func TestAsyncDispatcher_DropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	sink := &capturingSink{block: block}
	d := NewAsyncDispatcher(sink, Options{Workers: 1, Buffer: 1, SinkName: "test"})

	// First record occupies the worker, second occupies the buffer. A
	// non-blocking Dispatch must drop everything after that.
	d.Dispatch(record("r1"))
	time.Sleep(50 * time.Millisecond)
	d.Dispatch(record("r2"))

	done := make(chan struct{})
	go func() {
		d.Dispatch(record("r3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on full queue")
	}

	close(block)
	require.NoError(t, d.Close())
	assert.Len(t, sink.delivered(), 2)
}

func TestAsyncDispatcher_CloseIsIdempotent(t *testing.T) {
	d := NewAsyncDispatcher(&capturingSink{}, Options{Workers: 1, Buffer: 1, SinkName: "test"})
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
}
