package model

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignFailed    CampaignStatus = "failed"
)

func (s CampaignStatus) String() string {
	return string(s)
}

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignPaused, CampaignCompleted, CampaignFailed:
		return true
	default:
		return false
	}
}

// Campaign is the DB entity persisted in the campaigns table.
// Quota fields (daily_limit, messages_sent_today, last_reset_at) describe the
// current 24h send window; pause fields are set only while status=paused.
type Campaign struct {
	ID                int64          `db:"id"`
	AccountID         int64          `db:"account_id"`
	InboxID           int64          `db:"inbox_id"`
	Name              string         `db:"name"`
	Status            CampaignStatus `db:"status"`
	DailyLimit        int            `db:"daily_limit"` // <=0 means platform default cap
	MessagesSentToday int            `db:"messages_sent_today"`
	LastResetAt       *time.Time     `db:"last_reset_at"`
	PausedAt          *time.Time     `db:"paused_at"`
	PauseReason       *string        `db:"pause_reason"`
	ResumeAt          *time.Time     `db:"resume_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// CampaignStep links a campaign to the template it sends at a given position.
type CampaignStep struct {
	ID         int64     `db:"id"`
	CampaignID int64     `db:"campaign_id"`
	Position   int       `db:"position"`
	TemplateID int64     `db:"template_id"`
	CreatedAt  time.Time `db:"created_at"`
}
