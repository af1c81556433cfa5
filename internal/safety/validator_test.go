package safety

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/health"
	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCampaigns struct {
	campaign   *model.Campaign
	recipients int64
	getErr     error
	countErr   error
}

func (f *fakeCampaigns) GetByID(context.Context, int64) (*model.Campaign, error) {
	return f.campaign, f.getErr
}
func (f *fakeCampaigns) CountRecipients(context.Context, int64) (int64, error) {
	return f.recipients, f.countErr
}
func (f *fakeCampaigns) ListDueForResume(context.Context, time.Time) ([]model.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaigns) ListActive(context.Context) ([]model.Campaign, error) { return nil, nil }
func (f *fakeCampaigns) GetQuota(context.Context, int64) (*repository.QuotaState, error) {
	return nil, nil
}
func (f *fakeCampaigns) ResetQuotaWindow(context.Context, int64, time.Time) error { return nil }
func (f *fakeCampaigns) IncrementSentToday(context.Context, int64, int) error     { return nil }
func (f *fakeCampaigns) MarkPaused(context.Context, *sqlx.Tx, int64, string, time.Time, *time.Time) error {
	return nil
}
func (f *fakeCampaigns) MarkActive(context.Context, *sqlx.Tx, int64) error { return nil }

type fakeTemplates struct {
	tmpl *model.MessageTemplate
	err  error
}

func (f *fakeTemplates) GetByID(context.Context, int64) (*model.MessageTemplate, error) {
	return f.tmpl, f.err
}
func (f *fakeTemplates) GetFirstStepTemplate(context.Context, int64) (*model.MessageTemplate, error) {
	return f.tmpl, f.err
}

type fakeOptIns struct {
	missing int64
	err     error
}

func (f *fakeOptIns) CountRecipientsWithoutOptIn(context.Context, int64) (int64, error) {
	return f.missing, f.err
}

type fakeHealth struct {
	status health.Status
	err    error
}

func (f *fakeHealth) IsHealthy(context.Context, int64) (health.Status, error) {
	return f.status, f.err
}

func greenStatus() health.Status {
	return health.Status{
		Healthy:       true,
		QualityRating: model.QualityGreen,
		Tier:          model.Tier1K,
		TierLimit:     model.TierLimit1K,
	}
}

func utilityTemplate() *model.MessageTemplate {
	return &model.MessageTemplate{ID: 1, Name: "order_update", Category: "utility", ApprovalStatus: model.TemplateApproved}
}

func marketingTemplate() *model.MessageTemplate {
	return &model.MessageTemplate{ID: 2, Name: "spring_sale", Category: "marketing", ApprovalStatus: model.TemplateApproved}
}

func testCampaign() *model.Campaign {
	return &model.Campaign{ID: 1, InboxID: 1, Status: model.CampaignDraft, DailyLimit: 1000}
}

func newValidator(c *fakeCampaigns, t *fakeTemplates, o *fakeOptIns, h *fakeHealth) *Validator {
	return NewValidator(c, t, o, h, 80, zap.NewNop())
}

func TestValidateHealthyUtilityCampaign(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 100},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Safe)
	assert.Empty(t, res.CriticalIssues)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, int64(100), res.Stats.RecipientCount)
	assert.Equal(t, "utility", res.Stats.TemplateCategory)
}

func TestValidateRecipientsOverTierLimit(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 1500},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()}, // tier limit 1000
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
	require.Len(t, res.CriticalIssues, 1)
	assert.Contains(t, res.CriticalIssues[0], "1500")
	assert.Contains(t, res.CriticalIssues[0], "1000")
}

func TestValidateRecipientsNearTierLimitWarns(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 900},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Safe, "warning must not block")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "80%")
}

func TestValidateRedRatingBlocks(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: health.Status{
			Healthy:       false,
			Reason:        `quality rating is RED for inbox "main"`,
			QualityRating: model.QualityRed,
			Tier:          model.Tier1K,
			TierLimit:     model.TierLimit1K,
		}},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
	assert.Contains(t, res.CriticalIssues[0], "RED")
}

func TestValidateYellowRatingWarns(t *testing.T) {
	st := greenStatus()
	st.QualityRating = model.QualityYellow
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: st},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Safe)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "YELLOW")
}

func TestValidateMarketingWithoutConsentBlocks(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: marketingTemplate()},
		&fakeOptIns{missing: 3},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
	require.Len(t, res.CriticalIssues, 1)
	assert.Contains(t, res.CriticalIssues[0], "3 recipients")
	assert.Equal(t, int64(3), res.Stats.RecipientsWithoutOptIn)
}

func TestValidateUtilitySkipsConsentCheck(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{err: errors.New("must not be called")},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Safe)
}

func TestValidateUnknownCategoryRequiresConsent(t *testing.T) {
	tmpl := &model.MessageTemplate{ID: 3, Name: "mystery", ApprovalStatus: model.TemplateApproved}
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: tmpl},
		&fakeOptIns{missing: 10},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
}

func TestValidateOptInLookupFailureIsUnsafeNotError(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: marketingTemplate()},
		&fakeOptIns{err: errors.New("db down")},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err, "one wedged dependency must not crash validation")
	assert.False(t, res.Safe)
	assert.Contains(t, res.CriticalIssues[0], "cannot verify recipient consent")
}

func TestValidateHealthUnavailableIsUnsafeNotError(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{err: errors.New("upstream down, no cache")},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
	assert.Contains(t, res.CriticalIssues[0], "cannot confirm account health")
}

func TestValidateUnapprovedTemplateBlocks(t *testing.T) {
	tmpl := utilityTemplate()
	tmpl.ApprovalStatus = model.TemplatePending
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: tmpl},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
	assert.Contains(t, res.CriticalIssues[0], "not approved")
}

func TestValidateNoTemplateStops(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 10},
		&fakeTemplates{tmpl: nil},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, res.Safe)
	assert.Contains(t, res.CriticalIssues[0], "no sendable content")
}

func TestValidateZeroRecipientsWarns(t *testing.T) {
	v := newValidator(
		&fakeCampaigns{campaign: testCampaign(), recipients: 0},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Safe)
	assert.Contains(t, res.Warnings[0], "no recipients")
}

func TestValidateDailyLimitSpanWarns(t *testing.T) {
	campaign := testCampaign()
	campaign.DailyLimit = 50
	v := newValidator(
		&fakeCampaigns{campaign: campaign, recipients: 200},
		&fakeTemplates{tmpl: utilityTemplate()},
		&fakeOptIns{},
		&fakeHealth{status: greenStatus()},
	)

	res, err := v.ValidateCampaignSafety(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.Safe)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "multiple days")
}

func TestValidateUnknownCampaign(t *testing.T) {
	v := newValidator(&fakeCampaigns{campaign: nil}, &fakeTemplates{}, &fakeOptIns{}, &fakeHealth{})

	res, err := v.ValidateCampaignSafety(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
	assert.False(t, res.Safe)
}
