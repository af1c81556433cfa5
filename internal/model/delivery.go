package model

import "time"

type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string { return string(s) }

// DeliveryRecord is one outbound attempt's terminal state, appended to
// ClickHouse by the dispatch loop and only read in aggregate here.
type DeliveryRecord struct {
	CampaignID     int64          `db:"campaign_id"`
	RecipientPhone string         `db:"recipient_phone"`
	Status         DeliveryStatus `db:"status"`
	ErrorCode      *int32         `db:"error_code"`
	OccurredAt     time.Time      `db:"occurred_at"`
}
