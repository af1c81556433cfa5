package http

import (
	"net/http"

	"github.com/Rogerio-auto/campaign-gateway/internal/delivery"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/labstack/echo/v4"
)

// GET /v1/campaigns/:id/delivery-metrics
func deliveryMetricsHandler(calc *delivery.Calculator, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		rates, err := calc.Rates(c.Request().Context(), campaign.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delivery metrics lookup failed"})
		}
		return c.JSON(http.StatusOK, rates)
	}
}
