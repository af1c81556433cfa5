package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/events"
	"github.com/Rogerio-auto/campaign-gateway/internal/metrics"
	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/safety"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrInvalidTransition = errors.New("invalid campaign status transition")
)

// Pause triggers, for metrics and audit.
const (
	TriggerManual      = "manual"
	TriggerHealth      = "health"
	TriggerDegradation = "degradation"
)

// Admission gates every transition into active.
type Admission interface {
	ValidateCampaignSafety(ctx context.Context, campaignID int64) (safety.Result, error)
}

// Controller owns the active↔paused transitions. Pausing does not cancel
// dispatch calls already in flight; it only gates future admission checks.
// Every transition back to active re-runs admission; there is no blind
// timer-based resume.
type Controller struct {
	db        *sqlx.DB
	campaigns repository.CampaignsRepository
	admission Admission
	publisher events.Publisher
	log       *zap.Logger

	now func() time.Time
}

func NewController(
	db *sqlx.DB,
	campaigns repository.CampaignsRepository,
	admission Admission,
	publisher events.Publisher,
	log *zap.Logger,
) *Controller {
	return &Controller{
		db:        db,
		campaigns: campaigns,
		admission: admission,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Pause moves an active campaign to paused, stamping paused_at and the reason
// verbatim. durationSeconds > 0 schedules an auto-resume candidate at
// now+duration; anything else means manual resume only. The status flip and
// the event publication commit in one transaction.
func (c *Controller) Pause(ctx context.Context, campaignID int64, reason, trigger string, durationSeconds int64) error {
	campaign, err := c.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("load campaign %d: %w", campaignID, err)
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}
	if campaign.Status != model.CampaignActive {
		return fmt.Errorf("%w: cannot pause campaign in status %s", ErrInvalidTransition, campaign.Status)
	}

	pausedAt := c.now()
	var resumeAt *time.Time
	if durationSeconds > 0 {
		t := pausedAt.Add(time.Duration(durationSeconds) * time.Second)
		resumeAt = &t
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := c.campaigns.MarkPaused(ctx, tx, campaignID, reason, pausedAt, resumeAt); err != nil {
		return fmt.Errorf("mark paused: %w", err)
	}
	if err := c.publisher.Publish(ctx, tx, events.Event{
		Type:       events.TypeCampaignPaused,
		CampaignID: campaignID,
		Reason:     reason,
		At:         pausedAt,
	}); err != nil {
		return fmt.Errorf("publish paused event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	metrics.PausesTotal.WithLabelValues(trigger).Inc()
	c.log.Info("campaign paused",
		zap.Int64("campaign_id", campaignID),
		zap.String("reason", reason),
		zap.String("trigger", trigger),
		zap.Bool("auto_resume", resumeAt != nil))
	return nil
}

// Activate validates and, when safe, flips a draft or paused campaign to
// active. The validation result is returned either way so callers can show
// the operator exactly what blocked activation.
func (c *Controller) Activate(ctx context.Context, campaignID int64) (safety.Result, bool, error) {
	campaign, err := c.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return safety.Result{}, false, fmt.Errorf("load campaign %d: %w", campaignID, err)
	}
	if campaign == nil {
		return safety.Result{}, false, ErrCampaignNotFound
	}
	if campaign.Status != model.CampaignDraft && campaign.Status != model.CampaignPaused {
		return safety.Result{}, false, fmt.Errorf("%w: cannot activate campaign in status %s", ErrInvalidTransition, campaign.Status)
	}

	evType := events.TypeCampaignActivated
	if campaign.Status == model.CampaignPaused {
		evType = events.TypeCampaignResumed
	}
	return c.admitAndFlip(ctx, campaignID, evType)
}

// Resume is Activate restricted to paused campaigns.
func (c *Controller) Resume(ctx context.Context, campaignID int64) (safety.Result, bool, error) {
	campaign, err := c.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return safety.Result{}, false, fmt.Errorf("load campaign %d: %w", campaignID, err)
	}
	if campaign == nil {
		return safety.Result{}, false, ErrCampaignNotFound
	}
	if campaign.Status != model.CampaignPaused {
		return safety.Result{}, false, fmt.Errorf("%w: cannot resume campaign in status %s", ErrInvalidTransition, campaign.Status)
	}
	return c.admitAndFlip(ctx, campaignID, events.TypeCampaignResumed)
}

func (c *Controller) admitAndFlip(ctx context.Context, campaignID int64, evType string) (safety.Result, bool, error) {
	res, err := c.admission.ValidateCampaignSafety(ctx, campaignID)
	if err != nil {
		return res, false, err
	}
	if !res.Safe {
		return res, false, nil
	}

	at := c.now()
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, false, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := c.campaigns.MarkActive(ctx, tx, campaignID); err != nil {
		return res, false, fmt.Errorf("mark active: %w", err)
	}
	if err := c.publisher.Publish(ctx, tx, events.Event{
		Type:       evType,
		CampaignID: campaignID,
		At:         at,
	}); err != nil {
		return res, false, fmt.Errorf("publish %s event: %w", evType, err)
	}
	if err := tx.Commit(); err != nil {
		return res, false, err
	}

	c.log.Info("campaign activated", zap.Int64("campaign_id", campaignID), zap.String("event", evType))
	return res, true, nil
}

// ResumeDue re-validates every paused campaign whose resume_at has elapsed
// and resumes the ones that pass admission. A campaign that is still unsafe
// stays paused with its original reason; resuming is never a blind timer
// effect. Returns the number of campaigns resumed.
func (c *Controller) ResumeDue(ctx context.Context) (int, error) {
	due, err := c.campaigns.ListDueForResume(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("list due for resume: %w", err)
	}

	resumed := 0
	for _, campaign := range due {
		res, ok, err := c.admitAndFlip(ctx, campaign.ID, events.TypeCampaignResumed)
		switch {
		case err != nil:
			c.log.Warn("auto-resume errored, campaign stays paused",
				zap.Int64("campaign_id", campaign.ID), zap.Error(err))
		case !ok:
			c.log.Warn("auto-resume denied, campaign stays paused",
				zap.Int64("campaign_id", campaign.ID),
				zap.Strings("critical_issues", res.CriticalIssues))
		default:
			resumed++
		}
	}
	return resumed, nil
}
