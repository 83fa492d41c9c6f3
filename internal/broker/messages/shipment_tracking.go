package messages

import "time"

// ShipmentTrackingUpdated is published by the carrier-sync worker after one carrier check.
// Exactly one of Event and Error is usually set; neither means "nothing new".
type ShipmentTrackingUpdated struct {
	ShipmentID string    `json:"shipmentId"`
	CheckedAt  time.Time `json:"checkedAt"`

	Event *TrackingEvent `json:"event,omitempty"`

	NextCheckAt time.Time `json:"nextCheckAt"`

	Error *string `json:"error,omitempty"`
}

type TrackingEvent struct {
	Status            string     `json:"status"`
	StatusRaw         string     `json:"statusRaw,omitempty"`
	Location          string     `json:"location,omitempty"`
	Description       string     `json:"description,omitempty"`
	EventTime         time.Time  `json:"eventTime"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}
