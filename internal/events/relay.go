package events

import (
	"context"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/metrics"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"go.uber.org/zap"
)

// Producer is the Kafka side of the relay.
type Producer interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Relay drains pending outbox rows to Kafka. At-least-once: a row is marked
// published only after the write succeeds; failed rows get their attempt
// counter bumped and are retried on the next run.
type Relay struct {
	outbox    repository.OutboxRepository
	producer  Producer
	batchSize int
	log       *zap.Logger
}

func NewRelay(outbox repository.OutboxRepository, producer Producer, batchSize int, log *zap.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Relay{outbox: outbox, producer: producer, batchSize: batchSize, log: log}
}

// RunOnce processes one batch and returns how many rows it published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	rows, err := r.outbox.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var published, failed []int64
	for _, row := range rows {
		if err := r.producer.Publish(ctx, row.AggregateID, row.Payload); err != nil {
			metrics.EventsRelayedTotal.WithLabelValues("error").Inc()
			r.log.Warn("outbox relay publish failed",
				zap.Int64("outbox_id", row.ID),
				zap.String("topic", row.Topic),
				zap.Error(err))
			failed = append(failed, row.ID)
			continue
		}
		metrics.EventsRelayedTotal.WithLabelValues("ok").Inc()
		published = append(published, row.ID)
	}

	if err := r.outbox.MarkPublished(ctx, published, time.Now()); err != nil {
		return len(published), err
	}
	if err := r.outbox.IncrementAttempts(ctx, failed); err != nil {
		return len(published), err
	}
	return len(published), nil
}
