package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/util"
	"github.com/jmoiron/sqlx"
)

const (
	TypeCampaignActivated = "campaign.activated"
	TypeCampaignPaused    = "campaign.paused"
	TypeCampaignResumed   = "campaign.resumed"
)

// Event is the payload published for campaign lifecycle changes.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CampaignID int64     `json:"campaign_id"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher decouples the lifecycle core from any concrete transport. The tx
// lets implementations couple the publication with the caller's state change;
// implementations that don't need it ignore it.
type Publisher interface {
	Publish(ctx context.Context, tx *sqlx.Tx, ev Event) error
}

// OutboxPublisher writes events to the outbox table; the scheduler relay
// drains them to Kafka. Written inside the caller's tx, the event and the
// status flip commit or roll back together.
type OutboxPublisher struct {
	outbox repository.OutboxRepository
	topic  string
}

func NewOutboxPublisher(outbox repository.OutboxRepository, topic string) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox, topic: topic}
}

var _ Publisher = (*OutboxPublisher)(nil)

func (p *OutboxPublisher) Publish(ctx context.Context, tx *sqlx.Tx, ev Event) error {
	if ev.ID == "" {
		ev.ID = util.NewULID()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.outbox.Insert(ctx, tx, "campaign", strconv.FormatInt(ev.CampaignID, 10), p.topic, payload)
}

// MemoryPublisher collects events in memory; test substitute for the outbox.
type MemoryPublisher struct {
	mu     sync.Mutex
	Events []Event
}

var _ Publisher = (*MemoryPublisher)(nil)

func (p *MemoryPublisher) Publish(_ context.Context, _ *sqlx.Tx, ev Event) error {
	p.mu.Lock()
	p.Events = append(p.Events, ev)
	p.mu.Unlock()
	return nil
}
