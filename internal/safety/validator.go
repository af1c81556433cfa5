package safety

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rogerio-auto/campaign-gateway/internal/health"
	"github.com/Rogerio-auto/campaign-gateway/internal/metrics"
	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"go.uber.org/zap"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// Result is the full admission verdict. Stats are populated even when
// safe=false so operators can see why a campaign was blocked.
type Result struct {
	Safe           bool     `json:"safe"`
	CriticalIssues []string `json:"critical_issues"`
	Warnings       []string `json:"warnings"`
	Stats          Stats    `json:"stats"`
}

type Stats struct {
	RecipientCount         int64  `json:"recipient_count"`
	Tier                   string `json:"tier"`
	TierLimit              int    `json:"tier_limit"`
	QualityRating          string `json:"quality_rating"`
	RecipientsWithoutOptIn int64  `json:"recipients_without_opt_in"`
	TemplateCategory       string `json:"template_category"`
}

// HealthChecker is the Health Monitor surface the validator needs.
type HealthChecker interface {
	IsHealthy(ctx context.Context, inboxID int64) (health.Status, error)
}

// Validator is the admission controller: every activation and every dispatch
// batch goes through ValidateCampaignSafety first. Checks run in a fixed
// order and accumulate; nothing short-circuits once a template exists, so the
// caller always gets the complete picture.
type Validator struct {
	campaigns repository.CampaignsRepository
	templates repository.TemplatesRepository
	optIns    repository.OptInsRepository
	healthMon HealthChecker
	log       *zap.Logger

	tierWarnPercent int
}

func NewValidator(
	campaigns repository.CampaignsRepository,
	templates repository.TemplatesRepository,
	optIns repository.OptInsRepository,
	healthMon HealthChecker,
	tierWarnPercent int,
	log *zap.Logger,
) *Validator {
	if tierWarnPercent <= 0 || tierWarnPercent >= 100 {
		tierWarnPercent = 80
	}
	return &Validator{
		campaigns:       campaigns,
		templates:       templates,
		optIns:          optIns,
		healthMon:       healthMon,
		log:             log,
		tierWarnPercent: tierWarnPercent,
	}
}

// ValidateCampaignSafety builds the admission verdict for one campaign.
//
// Failure semantics: a lookup failure on the primary records (campaign,
// template, recipients) is terminal: safe=false, one critical issue, and the
// wrapped error is returned so transports can distinguish 404 from 500.
// Failures in secondary signals (health, consent) degrade to a conservative
// unsafe verdict with a nil error; one wedged dependency must not crash the
// caller.
func (v *Validator) ValidateCampaignSafety(ctx context.Context, campaignID int64) (Result, error) {
	res := Result{
		CriticalIssues: []string{},
		Warnings:       []string{},
		Stats: Stats{
			Tier:             model.TierUnknown.String(),
			QualityRating:    model.QualityUnknown.String(),
			TemplateCategory: model.CategoryUnknown.String(),
		},
	}

	campaign, err := v.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		res.CriticalIssues = append(res.CriticalIssues, "campaign lookup failed")
		return v.finish(res), fmt.Errorf("load campaign %d: %w", campaignID, err)
	}
	if campaign == nil {
		res.CriticalIssues = append(res.CriticalIssues, "campaign not found")
		return v.finish(res), ErrCampaignNotFound
	}

	tmpl, err := v.templates.GetFirstStepTemplate(ctx, campaignID)
	if err != nil {
		res.CriticalIssues = append(res.CriticalIssues, "campaign content lookup failed")
		return v.finish(res), fmt.Errorf("load first step template for campaign %d: %w", campaignID, err)
	}
	if tmpl == nil {
		// Nothing else is checkable without a template.
		res.CriticalIssues = append(res.CriticalIssues, "no sendable content configured (missing step or template)")
		return v.finish(res), nil
	}

	recipientCount, err := v.campaigns.CountRecipients(ctx, campaignID)
	if err != nil {
		res.CriticalIssues = append(res.CriticalIssues, "recipient lookup failed")
		return v.finish(res), fmt.Errorf("count recipients for campaign %d: %w", campaignID, err)
	}
	res.Stats.RecipientCount = recipientCount
	if recipientCount == 0 {
		res.Warnings = append(res.Warnings, "campaign has no recipients")
	}

	st, healthErr := v.healthMon.IsHealthy(ctx, campaign.InboxID)
	if healthErr != nil {
		// No cached value and the upstream is down: we cannot confirm the
		// account is healthy, so we refuse to vouch for it.
		res.CriticalIssues = append(res.CriticalIssues,
			fmt.Sprintf("cannot confirm account health: %v", healthErr))
	} else {
		res.Stats.QualityRating = st.QualityRating.String()
		res.Stats.Tier = st.Tier.String()
		res.Stats.TierLimit = st.TierLimit

		if !st.Healthy {
			res.CriticalIssues = append(res.CriticalIssues, st.Reason)
		} else if st.QualityRating == model.QualityYellow {
			res.Warnings = append(res.Warnings,
				"quality rating is YELLOW: sending is restricted and needs monitoring")
		}

		if st.TierLimit > 0 {
			if recipientCount > int64(st.TierLimit) {
				res.CriticalIssues = append(res.CriticalIssues,
					fmt.Sprintf("recipient count %d exceeds tier limit %d", recipientCount, st.TierLimit))
			} else if recipientCount*100 > int64(st.TierLimit)*int64(v.tierWarnPercent) {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("recipient count %d exceeds %d%% of tier limit %d",
						recipientCount, v.tierWarnPercent, st.TierLimit))
			}
		}
	}

	if tmpl.ApprovalStatus != model.TemplateApproved {
		res.CriticalIssues = append(res.CriticalIssues,
			fmt.Sprintf("template %q is not approved upstream (status: %s)", tmpl.Name, tmpl.ApprovalStatus))
	}

	category := tmpl.ResolvedCategory()
	res.Stats.TemplateCategory = category.String()
	if category.RequiresOptIn() {
		missing, err := v.optIns.CountRecipientsWithoutOptIn(ctx, campaignID)
		if err != nil {
			// Absence of proof of consent is never implicit consent.
			v.log.Error("opt-in count failed, treating campaign as unsafe",
				zap.Int64("campaign_id", campaignID), zap.Error(err))
			res.CriticalIssues = append(res.CriticalIssues,
				"opt-in validation failed: cannot verify recipient consent")
		} else {
			res.Stats.RecipientsWithoutOptIn = missing
			if missing > 0 {
				res.CriticalIssues = append(res.CriticalIssues,
					fmt.Sprintf("%d recipients have not opted in to marketing messages", missing))
			}
		}
	}

	if campaign.DailyLimit > 0 && recipientCount > int64(campaign.DailyLimit) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("recipient count %d exceeds daily limit %d: delivery will span multiple days",
				recipientCount, campaign.DailyLimit))
	}

	return v.finish(res), nil
}

func (v *Validator) finish(res Result) Result {
	res.Safe = len(res.CriticalIssues) == 0
	verdict := "unsafe"
	if res.Safe {
		verdict = "safe"
	}
	metrics.ValidationsTotal.WithLabelValues(verdict).Inc()
	return res
}
