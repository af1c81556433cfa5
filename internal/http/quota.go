package http

import (
	"net/http"

	"github.com/Rogerio-auto/campaign-gateway/internal/quota"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/labstack/echo/v4"
)

// GET /v1/campaigns/:id/quota
func getQuotaHandler(tracker *quota.Tracker, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		st, err := tracker.CheckDailyLimit(c.Request().Context(), campaign.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "quota lookup failed"})
		}
		return c.JSON(http.StatusOK, st)
	}
}

type incrementRequest struct {
	Count int `json:"count"`
}

// POST /v1/campaigns/:id/quota/increment
//
// Called by dispatch workers after a batch goes out. Count defaults to 1.
func incrementQuotaHandler(tracker *quota.Tracker, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		var req incrementRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}

		if err := tracker.Increment(c.Request().Context(), campaign.ID, req.Count); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "increment failed"})
		}
		return c.JSON(http.StatusAccepted, map[string]any{"incremented": true})
	}
}
