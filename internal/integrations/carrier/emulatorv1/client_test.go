package emulatorv1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestClient_GetTracking_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tracking/DLV/SB123", r.URL.Path)
		require.Equal(t, "k", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "carrier": "DLV",
  "tracking_number": "SB123",
  "status": "IN_TRANSIT",
  "status_raw": "raw",
  "status_at": "2025-01-01T00:00:00Z",
  "estimated_delivery": "2025-01-03T00:00:00Z",
  "events": [
    {"status":"ACCEPTED","status_raw":"a","event_time":"2024-12-31T00:00:00Z","location":"Mumbai"},
    {"status":"IN_TRANSIT","status_raw":"raw","event_time":"2025-01-01T00:00:00Z","location":"Pune","description":"left hub"}
  ]
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	res, err := c.GetTracking(context.Background(), "DLV", "SB123")
	require.NoError(t, err)
	require.Equal(t, models.ShipmentStatusInTransit, res.Status)
	require.Equal(t, "raw", res.StatusRaw)
	require.Equal(t, "Pune", res.Location)
	require.Equal(t, "left hub", res.Description)
	require.WithinDuration(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), res.EventTime, time.Second)
	require.NotNil(t, res.EstimatedDelivery)
}

func TestClient_GetTracking_429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.GetTracking(context.Background(), "DLV", "SB123")
	require.True(t, errors.Is(err, ErrRateLimited))
}

func TestNormalizeStatus(t *testing.T) {
	require.Equal(t, models.ShipmentStatusDelivered, normalizeStatus("DELIVERED"))
	require.Equal(t, models.ShipmentStatusPending, normalizeStatus("ACCEPTED"))
	require.Equal(t, models.ShipmentStatusFailedDelivery, normalizeStatus("undelivered"))
	require.Equal(t, "lost", normalizeStatus("LOST"))
}
