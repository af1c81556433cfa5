package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// QuotaState is the subset of campaign columns the quota tracker works on.
type QuotaState struct {
	DailyLimit        int        `db:"daily_limit"`
	MessagesSentToday int        `db:"messages_sent_today"`
	LastResetAt       *time.Time `db:"last_reset_at"`
}

// CampaignsRepository defines persistence for the campaigns table.
// MarkPaused/MarkActive accept an optional tx so callers can couple the
// status flip with an outbox write in one transaction.
type CampaignsRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Campaign, error)
	CountRecipients(ctx context.Context, campaignID int64) (int64, error)
	ListDueForResume(ctx context.Context, now time.Time) ([]model.Campaign, error)
	ListActive(ctx context.Context) ([]model.Campaign, error)

	GetQuota(ctx context.Context, id int64) (*QuotaState, error)
	ResetQuotaWindow(ctx context.Context, id int64, at time.Time) error
	IncrementSentToday(ctx context.Context, id int64, n int) error

	MarkPaused(ctx context.Context, tx *sqlx.Tx, id int64, reason string, pausedAt time.Time, resumeAt *time.Time) error
	MarkActive(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type CampaignsRepositoryImpl struct {
	db *sqlx.DB
}

func NewCampaignsRepository(db *sqlx.DB) *CampaignsRepositoryImpl {
	return &CampaignsRepositoryImpl{db: db}
}

var _ CampaignsRepository = (*CampaignsRepositoryImpl)(nil)

func (r *CampaignsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

func (r *CampaignsRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.GetContext(ctx, &c, `
		SELECT id, account_id, inbox_id, name, status, daily_limit,
		       messages_sent_today, last_reset_at, paused_at, pause_reason,
		       resume_at, created_at, updated_at
		  FROM campaigns
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignsRepositoryImpl) CountRecipients(ctx context.Context, campaignID int64) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM campaign_recipients WHERE campaign_id = ?`, campaignID)
	return n, err
}

// ListDueForResume returns paused campaigns whose scheduled resume time has
// elapsed. Callers must re-validate each one before flipping it to active.
func (r *CampaignsRepositoryImpl) ListDueForResume(ctx context.Context, now time.Time) ([]model.Campaign, error) {
	var rows []model.Campaign
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, inbox_id, name, status, daily_limit,
		       messages_sent_today, last_reset_at, paused_at, pause_reason,
		       resume_at, created_at, updated_at
		  FROM campaigns
		 WHERE status = 'paused' AND resume_at IS NOT NULL AND resume_at <= ?
	`, now)
	return rows, err
}

func (r *CampaignsRepositoryImpl) ListActive(ctx context.Context) ([]model.Campaign, error) {
	var rows []model.Campaign
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, inbox_id, name, status, daily_limit,
		       messages_sent_today, last_reset_at, paused_at, pause_reason,
		       resume_at, created_at, updated_at
		  FROM campaigns
		 WHERE status = 'active'
	`)
	return rows, err
}

func (r *CampaignsRepositoryImpl) GetQuota(ctx context.Context, id int64) (*QuotaState, error) {
	var q QuotaState
	err := r.db.GetContext(ctx, &q, `
		SELECT daily_limit, messages_sent_today, last_reset_at
		  FROM campaigns
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *CampaignsRepositoryImpl) ResetQuotaWindow(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		   SET messages_sent_today = 0, last_reset_at = ?, updated_at = NOW()
		 WHERE id = ?
	`, at, id)
	return err
}

// IncrementSentToday adds n to the daily counter in the database, never via
// read-modify-write, so concurrent dispatch workers cannot lose updates.
func (r *CampaignsRepositoryImpl) IncrementSentToday(ctx context.Context, id int64, n int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		   SET messages_sent_today = messages_sent_today + ?, updated_at = NOW()
		 WHERE id = ?
	`, n, id)
	return err
}

func (r *CampaignsRepositoryImpl) MarkPaused(ctx context.Context, tx *sqlx.Tx, id int64, reason string, pausedAt time.Time, resumeAt *time.Time) error {
	const q = `
		UPDATE campaigns
		   SET status = 'paused', paused_at = ?, pause_reason = ?, resume_at = ?, updated_at = NOW()
		 WHERE id = ?
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, pausedAt, reason, resumeAt, id)
		return err
	})
}

func (r *CampaignsRepositoryImpl) MarkActive(ctx context.Context, tx *sqlx.Tx, id int64) error {
	const q = `
		UPDATE campaigns
		   SET status = 'active', paused_at = NULL, pause_reason = NULL, resume_at = NULL, updated_at = NOW()
		 WHERE id = ?
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, id)
		return err
	})
}
