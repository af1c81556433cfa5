package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/metrics"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// resetWindow is the rolling send window. Exactness across a reset boundary
// is a soft guarantee; counter atomicity is the hard one.
const resetWindow = 24 * time.Hour

// State is the quota view returned to the dispatch loop before each batch.
type State struct {
	Allowed   bool `json:"allowed"`
	SentToday int  `json:"sent_today"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

// Tracker enforces the per-campaign daily cap, independent of the inbox-wide
// tier ceiling.
type Tracker struct {
	campaigns       repository.CampaignsRepository
	defaultDailyCap int

	now func() time.Time
}

func NewTracker(campaigns repository.CampaignsRepository, defaultDailyCap int) *Tracker {
	if defaultDailyCap <= 0 {
		defaultDailyCap = 1000
	}
	return &Tracker{
		campaigns:       campaigns,
		defaultDailyCap: defaultDailyCap,
		now:             time.Now,
	}
}

// CheckDailyLimit reports the campaign's remaining send budget, first
// resetting the window when more than 24h have elapsed since last_reset_at.
// The reset is persisted before the fresh state is returned.
func (t *Tracker) CheckDailyLimit(ctx context.Context, campaignID int64) (State, error) {
	q, err := t.campaigns.GetQuota(ctx, campaignID)
	if err != nil {
		return State{}, fmt.Errorf("load quota for campaign %d: %w", campaignID, err)
	}
	if q == nil {
		return State{}, ErrCampaignNotFound
	}

	now := t.now()
	if q.LastResetAt == nil || now.Sub(*q.LastResetAt) > resetWindow {
		if err := t.campaigns.ResetQuotaWindow(ctx, campaignID, now); err != nil {
			return State{}, fmt.Errorf("reset quota window for campaign %d: %w", campaignID, err)
		}
		metrics.QuotaResetsTotal.Inc()
		q.MessagesSentToday = 0
	}

	limit := t.limitFor(q.DailyLimit)
	remaining := limit - q.MessagesSentToday
	if remaining < 0 {
		remaining = 0
	}

	return State{
		Allowed:   q.MessagesSentToday < limit,
		SentToday: q.MessagesSentToday,
		Limit:     limit,
		Remaining: remaining,
	}, nil
}

// Increment adds count to the daily counter. The reset condition is owned by
// CheckDailyLimit; this is a plain DB-side atomic add, safe under concurrent
// dispatch workers.
func (t *Tracker) Increment(ctx context.Context, campaignID int64, count int) error {
	if count <= 0 {
		count = 1
	}
	return t.campaigns.IncrementSentToday(ctx, campaignID, count)
}

// limitFor: an absent or non-positive daily_limit means the platform default
// cap, not unlimited.
func (t *Tracker) limitFor(dailyLimit int) int {
	if dailyLimit > 0 {
		return dailyLimit
	}
	return t.defaultDailyCap
}
