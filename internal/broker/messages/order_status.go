package messages

import "time"

// OrderStatusChanged tells the order service that fulfilment moved an order forward.
type OrderStatusChanged struct {
	OrderID        string    `json:"orderId"`
	ShipmentID     string    `json:"shipmentId"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	ChangedAt      time.Time `json:"changedAt"`
}
