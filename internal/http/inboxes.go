package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rogerio-auto/campaign-gateway/internal/health"
	"github.com/Rogerio-auto/campaign-gateway/internal/http/middleware"
	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/upstream"
	"github.com/labstack/echo/v4"
)

func inboxFromPath(c echo.Context, inboxes repository.InboxesRepository) (*model.Inbox, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid inbox id"})
	}

	inbox, err := inboxes.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "inbox lookup failed"})
	}

	acctID, _ := middleware.AccountIDFromCtx(c)
	if inbox == nil || inbox.AccountID != acctID {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "inbox not found"})
	}
	return inbox, nil
}

// GET /v1/inboxes/:id/health
func inboxHealthHandler(monitor *health.Monitor, inboxes repository.InboxesRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		inbox, err := inboxFromPath(c, inboxes)
		if inbox == nil {
			return err
		}

		st, err := monitor.IsHealthy(c.Request().Context(), inbox.ID)
		if err != nil {
			// no cached value and the upstream is unreachable
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "cannot confirm inbox health"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"healthy":        st.Healthy,
			"reason":         st.Reason,
			"quality_rating": st.QualityRating.String(),
			"tier":           st.Tier.String(),
			"tier_limit":     st.TierLimit,
		})
	}
}

// POST /v1/inboxes/:id/health/refresh
//
// Forces an upstream fetch, bypassing the freshness window.
func refreshInboxHealthHandler(monitor *health.Monitor, inboxes repository.InboxesRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		inbox, err := inboxFromPath(c, inboxes)
		if inbox == nil {
			return err
		}

		refreshed, err := monitor.RefreshAndPersist(c.Request().Context(), inbox.ID)
		switch {
		case errors.Is(err, upstream.ErrUnavailable):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "upstream unavailable"})
		case err != nil:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "health refresh failed"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"quality_rating":    refreshed.QualityRating.String(),
			"tier":              refreshed.MessagingTier.String(),
			"tier_limit":        refreshed.TierLimit,
			"health_updated_at": refreshed.HealthUpdatedAt,
		})
	}
}
