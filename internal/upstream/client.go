package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/model"
)

// ErrUnavailable marks any failure to obtain a current health reading: the
// call errored, the breaker is open, or the inbox has no credentials. Callers
// must treat it as "cannot confirm healthy", never as "healthy".
var ErrUnavailable = errors.New("upstream unavailable")

// HealthSnapshot is the health view of one sending identity as reported by
// the platform, with the tier already mapped to its numeric ceiling.
type HealthSnapshot struct {
	QualityRating model.QualityRating
	Tier          model.MessagingTier
	TierLimit     int
	DisplayName   string
}

// Client talks to the WhatsApp Cloud (Graph) API phone-number endpoint.
type Client struct {
	baseURL string
	client  *http.Client
	br      *MicroBreaker
}

func NewClient(baseURL string, timeoutMs, failThreshold, openForMs int) *Client {
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 30000
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:      NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

type phoneNumberResponse struct {
	QualityRating      string `json:"quality_rating"`
	MessagingLimitTier string `json:"messaging_limit_tier"`
	VerifiedName       string `json:"verified_name"`
}

// FetchHealth reads quality rating, messaging tier, and display identity for
// the inbox's phone number. Unknown tier strings map to the minimum ceiling.
func (c *Client) FetchHealth(ctx context.Context, inbox *model.Inbox) (HealthSnapshot, error) {
	if inbox == nil || !inbox.HasCredentials() {
		return HealthSnapshot{}, fmt.Errorf("%w: inbox has no sending credentials", ErrUnavailable)
	}

	if !c.br.TryAcquire() {
		return HealthSnapshot{}, fmt.Errorf("%w: breaker open", ErrUnavailable)
	}

	res, err := c.get(ctx, inbox)
	if err != nil {
		c.br.OnFailure()
		return HealthSnapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.br.OnSuccess()

	tier := model.ParseMessagingTier(res.MessagingLimitTier)
	return HealthSnapshot{
		QualityRating: model.ParseQualityRating(res.QualityRating),
		Tier:          tier,
		TierLimit:     tier.Limit(),
		DisplayName:   res.VerifiedName,
	}, nil
}

func (c *Client) get(ctx context.Context, inbox *model.Inbox) (phoneNumberResponse, error) {
	url := fmt.Sprintf("%s/%s?fields=quality_rating,messaging_limit_tier,verified_name",
		c.baseURL, inbox.PhoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return phoneNumberResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+inbox.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return phoneNumberResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return phoneNumberResponse{}, fmt.Errorf("phone_number_id=%s status=%d body=%s",
			inbox.PhoneNumberID, resp.StatusCode, body)
	}

	var out phoneNumberResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return phoneNumberResponse{}, err
	}
	return out, nil
}
