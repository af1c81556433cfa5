package quota

import (
	"context"
	"testing"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCampaignsRepo struct {
	quota       *repository.QuotaState
	resetCalled bool
	resetAt     time.Time
	incremented int
}

func (f *fakeCampaignsRepo) GetByID(context.Context, int64) (*model.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignsRepo) CountRecipients(context.Context, int64) (int64, error) { return 0, nil }
func (f *fakeCampaignsRepo) ListDueForResume(context.Context, time.Time) ([]model.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignsRepo) ListActive(context.Context) ([]model.Campaign, error) { return nil, nil }
func (f *fakeCampaignsRepo) GetQuota(context.Context, int64) (*repository.QuotaState, error) {
	return f.quota, nil
}
func (f *fakeCampaignsRepo) ResetQuotaWindow(_ context.Context, _ int64, at time.Time) error {
	f.resetCalled = true
	f.resetAt = at
	f.quota.MessagesSentToday = 0
	f.quota.LastResetAt = &at
	return nil
}
func (f *fakeCampaignsRepo) IncrementSentToday(_ context.Context, _ int64, n int) error {
	f.incremented += n
	return nil
}
func (f *fakeCampaignsRepo) MarkPaused(context.Context, *sqlx.Tx, int64, string, time.Time, *time.Time) error {
	return nil
}
func (f *fakeCampaignsRepo) MarkActive(context.Context, *sqlx.Tx, int64) error { return nil }

func TestCheckDailyLimitWithinWindow(t *testing.T) {
	recent := time.Now().Add(-time.Hour)
	repo := &fakeCampaignsRepo{quota: &repository.QuotaState{
		DailyLimit:        100,
		MessagesSentToday: 40,
		LastResetAt:       &recent,
	}}
	tracker := NewTracker(repo, 1000)

	st, err := tracker.CheckDailyLimit(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, st.Allowed)
	assert.Equal(t, 40, st.SentToday)
	assert.Equal(t, 100, st.Limit)
	assert.Equal(t, 60, st.Remaining)
	assert.False(t, repo.resetCalled)
}

func TestCheckDailyLimitResetsExpiredWindow(t *testing.T) {
	stale := time.Now().Add(-25 * time.Hour)
	repo := &fakeCampaignsRepo{quota: &repository.QuotaState{
		DailyLimit:        100,
		MessagesSentToday: 100,
		LastResetAt:       &stale,
	}}
	tracker := NewTracker(repo, 1000)

	st, err := tracker.CheckDailyLimit(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, repo.resetCalled, "expired window must be reset and persisted")
	assert.True(t, st.Allowed)
	assert.Equal(t, 0, st.SentToday)
	assert.Equal(t, 100, st.Remaining)
}

func TestCheckDailyLimitNeverResetAt(t *testing.T) {
	repo := &fakeCampaignsRepo{quota: &repository.QuotaState{
		DailyLimit:        50,
		MessagesSentToday: 10,
		LastResetAt:       nil,
	}}
	tracker := NewTracker(repo, 1000)

	st, err := tracker.CheckDailyLimit(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, repo.resetCalled)
	assert.Equal(t, 0, st.SentToday)
}

func TestCheckDailyLimitExhausted(t *testing.T) {
	recent := time.Now().Add(-time.Minute)
	repo := &fakeCampaignsRepo{quota: &repository.QuotaState{
		DailyLimit:        100,
		MessagesSentToday: 100,
		LastResetAt:       &recent,
	}}
	tracker := NewTracker(repo, 1000)

	st, err := tracker.CheckDailyLimit(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, st.Allowed)
	assert.Equal(t, 0, st.Remaining)
}

func TestCheckDailyLimitDefaultCap(t *testing.T) {
	recent := time.Now().Add(-time.Minute)
	repo := &fakeCampaignsRepo{quota: &repository.QuotaState{
		DailyLimit:        0, // no explicit limit is never unlimited
		MessagesSentToday: 999,
		LastResetAt:       &recent,
	}}
	tracker := NewTracker(repo, 1000)

	st, err := tracker.CheckDailyLimit(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1000, st.Limit)
	assert.True(t, st.Allowed)
	assert.Equal(t, 1, st.Remaining)
}

func TestCheckDailyLimitUnknownCampaign(t *testing.T) {
	repo := &fakeCampaignsRepo{quota: nil}
	tracker := NewTracker(repo, 1000)

	_, err := tracker.CheckDailyLimit(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestIncrementDefaultsToOne(t *testing.T) {
	repo := &fakeCampaignsRepo{quota: &repository.QuotaState{}}
	tracker := NewTracker(repo, 1000)

	require.NoError(t, tracker.Increment(context.Background(), 1, 0))
	require.NoError(t, tracker.Increment(context.Background(), 1, 5))
	assert.Equal(t, 6, repo.incremented)
}
