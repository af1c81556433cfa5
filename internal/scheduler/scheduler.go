package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/config"
	"github.com/Rogerio-auto/campaign-gateway/internal/delivery"
	"github.com/Rogerio-auto/campaign-gateway/internal/events"
	"github.com/Rogerio-auto/campaign-gateway/internal/health"
	"github.com/Rogerio-auto/campaign-gateway/internal/lifecycle"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the background sweeps: auto-resume, health refresh,
// degradation checks, and the outbox relay. All sweeps are short-lived
// request/response passes; there is no long-lived worker state.
type Scheduler struct {
	cron *cron.Cron
	cfg  config.Config

	campaigns repository.CampaignsRepository
	inboxes   repository.InboxesRepository
	monitor   *health.Monitor
	calc      *delivery.Calculator
	control   *lifecycle.Controller
	relay     *events.Relay

	log *zap.Logger
}

func New(
	cfg config.Config,
	campaigns repository.CampaignsRepository,
	inboxes repository.InboxesRepository,
	monitor *health.Monitor,
	calc *delivery.Calculator,
	control *lifecycle.Controller,
	relay *events.Relay,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		cfg:       cfg,
		campaigns: campaigns,
		inboxes:   inboxes,
		monitor:   monitor,
		calc:      calc,
		control:   control,
		relay:     relay,
		log:       log,
	}
}

// Setup registers all sweeps. Specs come from config (cron or @every syntax).
func (s *Scheduler) Setup() error {
	sc := s.cfg.Scheduler

	if _, err := s.cron.AddFunc(sc.ResumeSpec, s.resumeSweep); err != nil {
		return fmt.Errorf("add resume sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(sc.HealthSpec, s.healthSweep); err != nil {
		return fmt.Errorf("add health sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(sc.DegradationSpec, s.degradationSweep); err != nil {
		return fmt.Errorf("add degradation sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(sc.RelaySpec, s.relaySweep); err != nil {
		return fmt.Errorf("add relay sweep: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running sweeps to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// resumeSweep re-validates paused campaigns whose resume_at elapsed.
func (s *Scheduler) resumeSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := s.control.ResumeDue(ctx)
	if err != nil {
		s.log.Error("resume sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("resume sweep done", zap.Int("resumed", n))
	}
}

// healthSweep refreshes cached health for inboxes backing active campaigns.
func (s *Scheduler) healthSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	inboxes, err := s.inboxes.ListWithActiveCampaigns(ctx)
	if err != nil {
		s.log.Error("health sweep: list inboxes failed", zap.Error(err))
		return
	}

	for _, inbox := range inboxes {
		if _, err := s.monitor.RefreshAndPersist(ctx, inbox.ID); err != nil {
			s.log.Warn("health sweep: refresh failed",
				zap.Int64("inbox_id", inbox.ID), zap.Error(err))
		}
	}
}

// degradationSweep pauses active campaigns whose block rate crossed the
// configured threshold. Small samples are ignored; a couple of blocks on a
// ten-message campaign is noise, not a trend.
func (s *Scheduler) degradationSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	active, err := s.campaigns.ListActive(ctx)
	if err != nil {
		s.log.Error("degradation sweep: list active failed", zap.Error(err))
		return
	}

	maxBlock := float64(s.cfg.Safety.MaxBlockRatePercent)
	for _, campaign := range active {
		rates, err := s.calc.Rates(ctx, campaign.ID)
		if err != nil {
			s.log.Warn("degradation sweep: rates failed",
				zap.Int64("campaign_id", campaign.ID), zap.Error(err))
			continue
		}
		if rates.Total < int64(s.cfg.Safety.MinDeliverySample) || rates.BlockRate < maxBlock {
			continue
		}

		reason := fmt.Sprintf("block rate %.1f%% exceeded threshold %.0f%%", rates.BlockRate, maxBlock)
		err = s.control.Pause(ctx, campaign.ID, reason, lifecycle.TriggerDegradation,
			int64(s.cfg.Safety.DegradationPauseSec))
		if err != nil {
			s.log.Error("degradation sweep: pause failed",
				zap.Int64("campaign_id", campaign.ID), zap.Error(err))
			continue
		}
		s.log.Warn("campaign auto-paused for degradation",
			zap.Int64("campaign_id", campaign.ID),
			zap.Float64("block_rate", rates.BlockRate))
	}
}

func (s *Scheduler) relaySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.relay.RunOnce(ctx); err != nil {
		s.log.Error("outbox relay failed", zap.Error(err))
	}
}
