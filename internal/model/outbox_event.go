package model

import "time"

// OutboxEvent is a pending publication row; the scheduler relay drains
// unpublished rows to Kafka.
type OutboxEvent struct {
	ID          int64      `db:"id"`
	Aggregate   string     `db:"aggregate"`    // e.g. "campaign"
	AggregateID string     `db:"aggregate_id"` // campaign id
	Topic       string     `db:"topic"`
	Payload     []byte     `db:"payload"`
	Attempts    int        `db:"attempts"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
