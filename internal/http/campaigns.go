package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rogerio-auto/campaign-gateway/internal/http/middleware"
	"github.com/Rogerio-auto/campaign-gateway/internal/lifecycle"
	"github.com/Rogerio-auto/campaign-gateway/internal/model"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/safety"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// campaignFromPath parses :id, loads the campaign, and enforces tenant
// ownership. A nil campaign with a nil error means the response was already
// written.
func campaignFromPath(c echo.Context, campaigns repository.CampaignsRepository) (*model.Campaign, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid campaign id"})
	}

	campaign, err := campaigns.GetByID(c.Request().Context(), id)
	if err != nil {
		log.Errorf("campaign lookup failed: %v", err)
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "campaign lookup failed"})
	}

	acctID, _ := middleware.AccountIDFromCtx(c)
	if campaign == nil || campaign.AccountID != acctID {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
	}
	return campaign, nil
}

// POST /v1/campaigns/:id/validate
func validateCampaignHandler(validator *safety.Validator, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		res, err := validator.ValidateCampaignSafety(c.Request().Context(), campaign.ID)
		if err != nil && !errors.Is(err, safety.ErrCampaignNotFound) {
			// verdict still carries the critical issue that stopped validation
			return c.JSON(http.StatusInternalServerError, res)
		}
		return c.JSON(http.StatusOK, res)
	}
}

// POST /v1/campaigns/:id/activate
func activateCampaignHandler(control *lifecycle.Controller, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		res, ok, err := control.Activate(c.Request().Context(), campaign.ID)
		return transitionResponse(c, "activated", res, ok, err)
	}
}

type pauseRequest struct {
	Reason          string `json:"reason"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// POST /v1/campaigns/:id/pause
func pauseCampaignHandler(control *lifecycle.Controller, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		var req pauseRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}
		if req.Reason == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "reason is required"})
		}

		err = control.Pause(c.Request().Context(), campaign.ID, req.Reason, lifecycle.TriggerManual, req.DurationSeconds)
		switch {
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, lifecycle.ErrCampaignNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		case err != nil:
			log.Errorf("pause failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "pause failed"})
		}
		return c.JSON(http.StatusOK, map[string]any{"paused": true})
	}
}

// POST /v1/campaigns/:id/resume
func resumeCampaignHandler(control *lifecycle.Controller, campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		campaign, err := campaignFromPath(c, campaigns)
		if campaign == nil {
			return err
		}

		res, ok, err := control.Resume(c.Request().Context(), campaign.ID)
		return transitionResponse(c, "resumed", res, ok, err)
	}
}

// transitionResponse maps an admission-gated transition to HTTP. A denied
// transition is 200 with the verdict attached so operators can read the
// critical issues; only real failures are 4xx/5xx.
func transitionResponse(c echo.Context, verb string, res safety.Result, ok bool, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrCampaignNotFound), errors.Is(err, safety.ErrCampaignNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": verb + " failed", "validation": res})
	}
	return c.JSON(http.StatusOK, map[string]any{verb: ok, "validation": res})
}
