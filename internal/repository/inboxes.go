package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

type InboxesRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Inbox, error)
	UpdateHealth(ctx context.Context, id int64, rating model.QualityRating, tier model.MessagingTier, tierLimit int, at time.Time) error
	ListWithActiveCampaigns(ctx context.Context) ([]model.Inbox, error)
}

type InboxesRepositoryImpl struct {
	db *sqlx.DB
}

func NewInboxesRepository(db *sqlx.DB) *InboxesRepositoryImpl {
	return &InboxesRepositoryImpl{db: db}
}

var _ InboxesRepository = (*InboxesRepositoryImpl)(nil)

func (r *InboxesRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Inbox, error) {
	var i model.Inbox
	err := r.db.GetContext(ctx, &i, `
		SELECT id, account_id, name, phone_number_id, access_token,
		       quality_rating, messaging_tier, tier_limit, health_updated_at,
		       created_at, updated_at
		  FROM inboxes
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// UpdateHealth persists a fresh upstream health snapshot for the inbox.
func (r *InboxesRepositoryImpl) UpdateHealth(ctx context.Context, id int64, rating model.QualityRating, tier model.MessagingTier, tierLimit int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inboxes
		   SET quality_rating = ?, messaging_tier = ?, tier_limit = ?,
		       health_updated_at = ?, updated_at = NOW()
		 WHERE id = ?
	`, rating.String(), tier.String(), tierLimit, at, id)
	return err
}

// ListWithActiveCampaigns returns inboxes that currently back at least one
// active campaign; the scheduler refreshes health only for those.
func (r *InboxesRepositoryImpl) ListWithActiveCampaigns(ctx context.Context) ([]model.Inbox, error) {
	var rows []model.Inbox
	err := r.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT i.id, i.account_id, i.name, i.phone_number_id, i.access_token,
		       i.quality_rating, i.messaging_tier, i.tier_limit, i.health_updated_at,
		       i.created_at, i.updated_at
		  FROM inboxes i
		  JOIN campaigns c ON c.inbox_id = i.id
		 WHERE c.status = 'active'
	`)
	return rows, err
}
