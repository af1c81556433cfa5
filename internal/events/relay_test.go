package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOutbox struct {
	pending   []model.OutboxEvent
	inserted  []model.OutboxEvent
	published []int64
	attempts  []int64
}

func (f *fakeOutbox) Insert(_ context.Context, _ *sqlx.Tx, aggregate, aggregateID, topic string, payload []byte) error {
	f.inserted = append(f.inserted, model.OutboxEvent{
		Aggregate:   aggregate,
		AggregateID: aggregateID,
		Topic:       topic,
		Payload:     payload,
	})
	return nil
}
func (f *fakeOutbox) ListPending(context.Context, int) ([]model.OutboxEvent, error) {
	return f.pending, nil
}
func (f *fakeOutbox) MarkPublished(_ context.Context, ids []int64, _ time.Time) error {
	f.published = append(f.published, ids...)
	return nil
}
func (f *fakeOutbox) IncrementAttempts(_ context.Context, ids []int64) error {
	f.attempts = append(f.attempts, ids...)
	return nil
}

type fakeProducer struct {
	failKeys map[string]bool
	sent     []string
}

func (f *fakeProducer) Publish(_ context.Context, key string, _ []byte) error {
	if f.failKeys[key] {
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, key)
	return nil
}

func TestRelayRunOnce(t *testing.T) {
	outbox := &fakeOutbox{pending: []model.OutboxEvent{
		{ID: 1, AggregateID: "10", Topic: "campaigns.events"},
		{ID: 2, AggregateID: "11", Topic: "campaigns.events"},
	}}
	producer := &fakeProducer{}
	relay := NewRelay(outbox, producer, 200, zap.NewNop())

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, outbox.published)
	assert.Empty(t, outbox.attempts)
}

func TestRelayRetriesFailedRows(t *testing.T) {
	outbox := &fakeOutbox{pending: []model.OutboxEvent{
		{ID: 1, AggregateID: "10"},
		{ID: 2, AggregateID: "11"},
	}}
	producer := &fakeProducer{failKeys: map[string]bool{"11": true}}
	relay := NewRelay(outbox, producer, 200, zap.NewNop())

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, outbox.published)
	assert.Equal(t, []int64{2}, outbox.attempts, "failed row stays pending with bumped attempts")
}

func TestRelayEmptyOutbox(t *testing.T) {
	relay := NewRelay(&fakeOutbox{}, &fakeProducer{}, 200, zap.NewNop())

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxPublisherAssignsIDAndMarshals(t *testing.T) {
	outbox := &fakeOutbox{}
	pub := NewOutboxPublisher(outbox, "campaigns.events")

	err := pub.Publish(context.Background(), nil, Event{
		Type:       TypeCampaignPaused,
		CampaignID: 7,
		Reason:     "block rate too high",
		At:         time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, outbox.inserted, 1)
	row := outbox.inserted[0]
	assert.Equal(t, "campaign", row.Aggregate)
	assert.Equal(t, "7", row.AggregateID)
	assert.Equal(t, "campaigns.events", row.Topic)
	assert.Contains(t, string(row.Payload), `"type":"campaign.paused"`)
	assert.Contains(t, string(row.Payload), `"id":"`)
}
