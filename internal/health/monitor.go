package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/metrics"
	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/upstream"
	"go.uber.org/zap"
)

var ErrInboxNotFound = errors.New("inbox not found")

// Provider fetches a current health reading from the upstream platform.
type Provider interface {
	FetchHealth(ctx context.Context, inbox *model.Inbox) (upstream.HealthSnapshot, error)
}

// Status is the read-path result consumed by the admission controller.
type Status struct {
	Healthy       bool
	Reason        string
	QualityRating model.QualityRating
	Tier          model.MessagingTier
	TierLimit     int
}

// Monitor provides a freshness-bounded view of inbox health. The fast path
// reads the cached row; the slow path confirms against the upstream and
// persists. On refresh failure it degrades to the last known value rather
// than erroring the whole validation pipeline: staleness alone never blocks
// a campaign, only a confirmed red rating does.
type Monitor struct {
	inboxes  repository.InboxesRepository
	provider Provider
	log      *zap.Logger

	ratingFreshness time.Duration // rating moves fast
	tierFreshness   time.Duration // ceiling moves rarely

	now func() time.Time
}

func NewMonitor(inboxes repository.InboxesRepository, provider Provider, ratingFreshness, tierFreshness time.Duration, log *zap.Logger) *Monitor {
	if ratingFreshness <= 0 {
		ratingFreshness = time.Hour
	}
	if tierFreshness <= 0 {
		tierFreshness = 24 * time.Hour
	}
	return &Monitor{
		inboxes:         inboxes,
		provider:        provider,
		log:             log,
		ratingFreshness: ratingFreshness,
		tierFreshness:   tierFreshness,
		now:             time.Now,
	}
}

// FetchHealth calls the upstream for the inbox without touching the cache.
func (m *Monitor) FetchHealth(ctx context.Context, inboxID int64) (upstream.HealthSnapshot, error) {
	inbox, err := m.inboxes.GetByID(ctx, inboxID)
	if err != nil {
		return upstream.HealthSnapshot{}, fmt.Errorf("load inbox %d: %w", inboxID, err)
	}
	if inbox == nil {
		return upstream.HealthSnapshot{}, ErrInboxNotFound
	}
	return m.fetch(ctx, inbox)
}

// RefreshAndPersist fetches current health and writes it to the inbox row;
// subsequent reads within the freshness window reuse the cached value.
func (m *Monitor) RefreshAndPersist(ctx context.Context, inboxID int64) (*model.Inbox, error) {
	inbox, err := m.inboxes.GetByID(ctx, inboxID)
	if err != nil {
		return nil, fmt.Errorf("load inbox %d: %w", inboxID, err)
	}
	if inbox == nil {
		return nil, ErrInboxNotFound
	}
	if err := m.refresh(ctx, inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}

// refresh fetches and persists health for an already-loaded inbox, mutating
// it in place on success.
func (m *Monitor) refresh(ctx context.Context, inbox *model.Inbox) error {
	snap, err := m.fetch(ctx, inbox)
	if err != nil {
		return err
	}

	at := m.now()
	if err := m.inboxes.UpdateHealth(ctx, inbox.ID, snap.QualityRating, snap.Tier, snap.TierLimit, at); err != nil {
		return fmt.Errorf("persist health for inbox %d: %w", inbox.ID, err)
	}

	inbox.QualityRating = snap.QualityRating
	inbox.MessagingTier = snap.Tier
	inbox.TierLimit = snap.TierLimit
	inbox.HealthUpdatedAt = &at
	return nil
}

func (m *Monitor) fetch(ctx context.Context, inbox *model.Inbox) (upstream.HealthSnapshot, error) {
	snap, err := m.provider.FetchHealth(ctx, inbox)
	if err != nil {
		metrics.UpstreamHealthFetchesTotal.WithLabelValues("error").Inc()
		return upstream.HealthSnapshot{}, err
	}
	metrics.UpstreamHealthFetchesTotal.WithLabelValues("ok").Inc()
	return snap, nil
}

// IsHealthy is the admission-control read path. With no cached health it
// refreshes synchronously (and fails if the upstream does); with stale cached
// health it tries to refresh but falls back to the stale value on failure.
// Healthy is false only for a confirmed red rating; yellow stays healthy and
// is surfaced as a reason for the caller to warn on.
func (m *Monitor) IsHealthy(ctx context.Context, inboxID int64) (Status, error) {
	inbox, err := m.inboxes.GetByID(ctx, inboxID)
	if err != nil {
		return Status{}, fmt.Errorf("load inbox %d: %w", inboxID, err)
	}
	if inbox == nil {
		return Status{}, ErrInboxNotFound
	}

	if inbox.HealthUpdatedAt == nil {
		if err := m.refresh(ctx, inbox); err != nil {
			return Status{}, err
		}
	} else if m.now().Sub(*inbox.HealthUpdatedAt) > m.ratingFreshness {
		if err := m.refresh(ctx, inbox); err != nil {
			m.log.Warn("health refresh failed, using stale cache",
				zap.Int64("inbox_id", inbox.ID),
				zap.Time("health_updated_at", *inbox.HealthUpdatedAt),
				zap.Error(err))
		}
	}

	st := Status{
		Healthy:       inbox.QualityRating != model.QualityRed,
		QualityRating: inbox.QualityRating,
		Tier:          inbox.MessagingTier,
		TierLimit:     effectiveTierLimit(inbox),
	}
	if !st.Healthy {
		st.Reason = fmt.Sprintf("quality rating is RED for inbox %q", inbox.Name)
	}
	return st, nil
}

// TierLimit returns the inbox's send ceiling under the longer tier freshness
// window. Same degrade-to-cache policy as IsHealthy.
func (m *Monitor) TierLimit(ctx context.Context, inboxID int64) (int, error) {
	inbox, err := m.inboxes.GetByID(ctx, inboxID)
	if err != nil {
		return 0, fmt.Errorf("load inbox %d: %w", inboxID, err)
	}
	if inbox == nil {
		return 0, ErrInboxNotFound
	}

	if inbox.HealthUpdatedAt == nil {
		if err := m.refresh(ctx, inbox); err != nil {
			return 0, err
		}
	} else if m.now().Sub(*inbox.HealthUpdatedAt) > m.tierFreshness {
		if err := m.refresh(ctx, inbox); err != nil {
			m.log.Warn("tier refresh failed, using stale cache",
				zap.Int64("inbox_id", inbox.ID), zap.Error(err))
		}
	}

	return effectiveTierLimit(inbox), nil
}

// effectiveTierLimit never returns a non-positive ceiling; a row that predates
// health polling still gets the conservative minimum.
func effectiveTierLimit(inbox *model.Inbox) int {
	if inbox.TierLimit > 0 {
		return inbox.TierLimit
	}
	return model.MinTierLimit
}
