// Package dispatch moves finalized records from the conversation path to
// the delivery sink in the background.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
)

const appendTimeout = 30 * time.Second

// AsyncDispatcher queues records on a bounded channel and delivers them
// with a small worker pool. Dispatch never blocks: when the queue is full
// the record is dropped and logged, keeping the bot responsive under a
// sink outage.
type AsyncDispatcher struct {
	sink     providers.DeliverySink
	sinkName string
	notifier RecordObserver
	metrics  *observability.Metrics

	queue     chan *entities.FeedbackRecord
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// RecordObserver is notified after a record is successfully delivered.
// Notification failures are logged and never retried.
type RecordObserver interface {
	NotifyRecord(ctx context.Context, record *entities.FeedbackRecord) error
}

// Options configures an AsyncDispatcher.
type Options struct {
	Workers  int
	Buffer   int
	SinkName string
	// Notifier may be nil.
	Notifier RecordObserver
	// Metrics may be nil.
	Metrics *observability.Metrics
}

// NewAsyncDispatcher creates the dispatcher and starts its workers.
func NewAsyncDispatcher(sink providers.DeliverySink, opts Options) *AsyncDispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	d := &AsyncDispatcher{
		sink:     sink,
		sinkName: opts.SinkName,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		queue:    make(chan *entities.FeedbackRecord, opts.Buffer),
	}

	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Dispatch enqueues the record for delivery without blocking.
func (d *AsyncDispatcher) Dispatch(record *entities.FeedbackRecord) {
	select {
	case d.queue <- record:
	default:
		observability.GetLogger().Error().
			Str("record_id", record.ID).
			Str("user_id", record.UserID).
			Msg("Dispatch queue full, dropping feedback record")
	}
}

// Close stops accepting records, drains the queue and waits for the
// workers to finish.
func (d *AsyncDispatcher) Close() error {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	return nil
}

func (d *AsyncDispatcher) worker() {
	defer d.wg.Done()
	for record := range d.queue {
		d.deliver(record)
	}
}

func (d *AsyncDispatcher) deliver(record *entities.FeedbackRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sink.Append(ctx, record)
	d.metrics.RecordSinkAppend(ctx, d.sinkName, time.Since(start), err)

	if err != nil {
		observability.GetLogger().Error().
			Err(err).
			Str("record_id", record.ID).
			Str("user_id", record.UserID).
			Str("sink", d.sinkName).
			Msg("Failed to deliver feedback record")
		return
	}

	if d.notifier != nil {
		if err := d.notifier.NotifyRecord(ctx, record); err != nil {
			observability.GetLogger().Warn().
				Err(err).
				Str("record_id", record.ID).
				Msg("Failed to notify reviewer about feedback record")
		}
	}
}
