package carrier

import (
	"context"
	"time"
)

// TrackingResult is the carrier's latest known state of a parcel. Status is already mapped
// onto shipment statuses; StatusRaw keeps the carrier's own wording.
type TrackingResult struct {
	Status            string
	StatusRaw         string
	Location          string
	Description       string
	EventTime         time.Time
	EstimatedDelivery *time.Time
}

type Client interface {
	GetTracking(ctx context.Context, providerCode, trackingNumber string) (TrackingResult, error)
}
