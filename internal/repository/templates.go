package repository

import (
	"context"
	"database/sql"

	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

type TemplatesRepository interface {
	GetByID(ctx context.Context, id int64) (*model.MessageTemplate, error)
	// GetFirstStepTemplate loads the template referenced by the campaign's
	// first step, or nil when the campaign has no steps or the template row
	// is gone.
	GetFirstStepTemplate(ctx context.Context, campaignID int64) (*model.MessageTemplate, error)
}

type TemplatesRepositoryImpl struct {
	db *sqlx.DB
}

func NewTemplatesRepository(db *sqlx.DB) *TemplatesRepositoryImpl {
	return &TemplatesRepositoryImpl{db: db}
}

var _ TemplatesRepository = (*TemplatesRepositoryImpl)(nil)

func (r *TemplatesRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.MessageTemplate, error) {
	var t model.MessageTemplate
	err := r.db.GetContext(ctx, &t, `
		SELECT id, inbox_id, name, category, kind, approval_status, created_at, updated_at
		  FROM message_templates
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplatesRepositoryImpl) GetFirstStepTemplate(ctx context.Context, campaignID int64) (*model.MessageTemplate, error) {
	var t model.MessageTemplate
	err := r.db.GetContext(ctx, &t, `
		SELECT t.id, t.inbox_id, t.name, t.category, t.kind, t.approval_status,
		       t.created_at, t.updated_at
		  FROM campaign_steps s
		  JOIN message_templates t ON t.id = s.template_id
		 WHERE s.campaign_id = ?
		 ORDER BY s.position ASC
		 LIMIT 1
	`, campaignID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
