package emulatorv1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/ShipBox/internal/integrations/carrier"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

var ErrRateLimited = errors.New("carrier emulator rate limit (429)")

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type respEvent struct {
	Status      string    `json:"status"`
	StatusRaw   string    `json:"status_raw"`
	EventTime   time.Time `json:"event_time"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

type respBody struct {
	Carrier           string      `json:"carrier"`
	TrackingNumber    string      `json:"tracking_number"`
	Status            string      `json:"status"`
	StatusRaw         string      `json:"status_raw"`
	StatusAt          time.Time   `json:"status_at"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery,omitempty"`
	Events            []respEvent `json:"events"`
}

func (c *Client) GetTracking(ctx context.Context, providerCode, trackingNumber string) (carrier.TrackingResult, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return carrier.TrackingResult{}, errors.Wrap(err, "parse base url")
	}
	u.Path = fmt.Sprintf("/v1/tracking/%s/%s", url.PathEscape(providerCode), url.PathEscape(trackingNumber))
	q := u.Query()
	if c.apiKey != "" {
		q.Set("apiKey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return carrier.TrackingResult{}, errors.Wrap(err, "new request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return carrier.TrackingResult{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return carrier.TrackingResult{}, ErrRateLimited
	}
	if resp.StatusCode/100 != 2 {
		return carrier.TrackingResult{}, fmt.Errorf("carrier emulator http %d", resp.StatusCode)
	}

	var rb respBody
	if err := json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		return carrier.TrackingResult{}, errors.Wrap(err, "decode")
	}

	res := carrier.TrackingResult{
		Status:            normalizeStatus(rb.Status),
		StatusRaw:         rb.StatusRaw,
		EventTime:         rb.StatusAt,
		EstimatedDelivery: rb.EstimatedDelivery,
	}
	// последнее событие несёт место и описание
	if n := len(rb.Events); n > 0 {
		last := rb.Events[n-1]
		res.Location = last.Location
		res.Description = last.Description
		if res.EventTime.IsZero() {
			res.EventTime = last.EventTime
		}
	}
	return res, nil
}

// normalizeStatus maps the emulator's upper-case statuses (IN_TRANSIT) onto shipment
// statuses (in_transit). Anything unrecognized is returned lower-cased as is.
func normalizeStatus(s string) string {
	low := strings.ToLower(strings.TrimSpace(s))
	switch low {
	case "accepted", "created":
		return models.ShipmentStatusPending
	case "out_for_delivery", "courier":
		return models.ShipmentStatusOutForDelivery
	case "returned", "return":
		return models.ShipmentStatusReturned
	case "failed", "failed_delivery", "undelivered":
		return models.ShipmentStatusFailedDelivery
	}
	return low
}
