package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Upstream error codes in the "recipient blocked sender" class. Failures with
// these codes count against the block rate.
const (
	errCodeSpamRateLimit    = 131048
	errCodeStoppedMarketing = 131050
)

// DeliveryCounts is the single-row aggregate the metrics calculator needs.
type DeliveryCounts struct {
	Total     int64 `db:"total"`
	Blocked   int64 `db:"blocked"`
	Delivered int64 `db:"delivered"`
}

// CHDeliveriesRepository aggregates delivery records from ClickHouse.
type CHDeliveriesRepository interface {
	CountsByCampaign(ctx context.Context, campaignID int64) (DeliveryCounts, error)
}

type chDeliveriesRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHDeliveriesRepository(ch *sqlx.DB) CHDeliveriesRepository {
	return &chDeliveriesRepository{ch: ch}
}

func (r *chDeliveriesRepository) CountsByCampaign(ctx context.Context, campaignID int64) (DeliveryCounts, error) {
	const q = `
		SELECT count()                                                        AS total,
		       countIf(status = 'failed' AND error_code IN (?, ?))            AS blocked,
		       countIf(status IN ('delivered', 'read'))                       AS delivered
		  FROM campaigns.delivery_records
		 WHERE campaign_id = ?
	`
	var c DeliveryCounts
	if err := r.ch.GetContext(ctx, &c, q, errCodeSpamRateLimit, errCodeStoppedMarketing, campaignID); err != nil {
		return DeliveryCounts{}, err
	}
	return c, nil
}
