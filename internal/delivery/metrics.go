package delivery

import (
	"context"

	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
)

// Rates are advisory health signals derived from a campaign's delivery
// history. An empty history yields zeros, not an error.
type Rates struct {
	BlockRate    float64 `json:"block_rate"`
	DeliveryRate float64 `json:"delivery_rate"`
	Total        int64   `json:"total"`
}

// Calculator is a pure aggregation over ClickHouse delivery records; it keeps
// no state of its own.
type Calculator struct {
	deliveries repository.CHDeliveriesRepository
}

func NewCalculator(deliveries repository.CHDeliveriesRepository) *Calculator {
	return &Calculator{deliveries: deliveries}
}

// Rates computes block rate and delivery rate in one aggregate query.
func (c *Calculator) Rates(ctx context.Context, campaignID int64) (Rates, error) {
	counts, err := c.deliveries.CountsByCampaign(ctx, campaignID)
	if err != nil {
		return Rates{}, err
	}
	if counts.Total == 0 {
		return Rates{}, nil
	}
	return Rates{
		BlockRate:    percent(counts.Blocked, counts.Total),
		DeliveryRate: percent(counts.Delivered, counts.Total),
		Total:        counts.Total,
	}, nil
}

// BlockRate is the fraction of records rejected as "recipient blocked sender".
func (c *Calculator) BlockRate(ctx context.Context, campaignID int64) (float64, error) {
	r, err := c.Rates(ctx, campaignID)
	return r.BlockRate, err
}

// DeliveryRate is the fraction of records with terminal status delivered/read.
func (c *Calculator) DeliveryRate(ctx context.Context, campaignID int64) (float64, error) {
	r, err := c.Rates(ctx, campaignID)
	return r.DeliveryRate, err
}

func percent(part, total int64) float64 {
	return float64(part) * 100 / float64(total)
}
