package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliveries struct {
	counts repository.DeliveryCounts
	err    error
}

func (f *fakeDeliveries) CountsByCampaign(context.Context, int64) (repository.DeliveryCounts, error) {
	return f.counts, f.err
}

func TestRates(t *testing.T) {
	calc := NewCalculator(&fakeDeliveries{counts: repository.DeliveryCounts{
		Total:     200,
		Blocked:   10,
		Delivered: 170,
	}})

	r, err := calc.Rates(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, r.BlockRate, 0.001)
	assert.InDelta(t, 85.0, r.DeliveryRate, 0.001)
	assert.Equal(t, int64(200), r.Total)
}

func TestRatesEmptyHistory(t *testing.T) {
	calc := NewCalculator(&fakeDeliveries{})

	r, err := calc.Rates(context.Background(), 1)
	require.NoError(t, err, "no history is zeros, not an error")
	assert.Zero(t, r.BlockRate)
	assert.Zero(t, r.DeliveryRate)
	assert.Zero(t, r.Total)
}

func TestRatesPropagatesError(t *testing.T) {
	calc := NewCalculator(&fakeDeliveries{err: errors.New("ch down")})

	_, err := calc.BlockRate(context.Background(), 1)
	assert.Error(t, err)
}
