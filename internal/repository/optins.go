package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// OptInsRepository reads the consent subsystem's records. This service never
// writes opt-ins; it only needs the aggregate "recipients without consent"
// count for a campaign.
type OptInsRepository interface {
	CountRecipientsWithoutOptIn(ctx context.Context, campaignID int64) (int64, error)
}

type OptInsRepositoryImpl struct {
	db *sqlx.DB
}

func NewOptInsRepository(db *sqlx.DB) *OptInsRepositoryImpl {
	return &OptInsRepositoryImpl{db: db}
}

var _ OptInsRepository = (*OptInsRepositoryImpl)(nil)

func (r *OptInsRepositoryImpl) CountRecipientsWithoutOptIn(ctx context.Context, campaignID int64) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*)
		  FROM campaign_recipients cr
		  JOIN campaigns c ON c.id = cr.campaign_id
		  LEFT JOIN opt_ins o
		    ON o.account_id = c.account_id AND o.phone = cr.phone
		 WHERE cr.campaign_id = ? AND o.id IS NULL
	`, campaignID)
	return n, err
}
