package models

import "time"

// Shipment statuses. delivered, returned and failed_delivery are terminal.
const (
	ShipmentStatusPending        = "pending"
	ShipmentStatusPickedUp       = "picked_up"
	ShipmentStatusInTransit      = "in_transit"
	ShipmentStatusOutForDelivery = "out_for_delivery"
	ShipmentStatusDelivered      = "delivered"
	ShipmentStatusFailedDelivery = "failed_delivery"
	ShipmentStatusReturned       = "returned"
)

func IsKnownShipmentStatus(s string) bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusPickedUp, ShipmentStatusInTransit,
		ShipmentStatusOutForDelivery, ShipmentStatusDelivered,
		ShipmentStatusFailedDelivery, ShipmentStatusReturned:
		return true
	}
	return false
}

func IsTerminalShipmentStatus(s string) bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusReturned || s == ShipmentStatusFailedDelivery
}

type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Package struct {
	Weight     float64    `json:"weight"`
	Dimensions Dimensions `json:"dimensions"`
	Value      float64    `json:"value"`
}

type TrackingEvent struct {
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type Shipment struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	ProviderID        string          `json:"providerId"`
	ProviderCode      string          `json:"providerCode"`
	RateID            string          `json:"rateId"`
	ServiceType       string          `json:"serviceType"`
	TrackingNumber    string          `json:"trackingNumber"`
	ShippingCost      float64         `json:"shippingCost"`
	IsFreeShipping    bool            `json:"isFreeShipping"`
	FromPincode       string          `json:"fromPincode,omitempty"`
	Address           Address         `json:"address"`
	Package           Package         `json:"package"`
	TrackingEvents    []TrackingEvent `json:"trackingEvents"`
	Status            string          `json:"status"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time      `json:"actualDelivery,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TrackingAppend is a single append to a shipment's event history.
type TrackingAppend struct {
	Event             TrackingEvent
	EstimatedDelivery *time.Time
}

// Apply appends the event and mirrors its status. Delivered stamps ActualDelivery with the
// event timestamp. Earlier events are left as they are.
func (s *Shipment) Apply(upd TrackingAppend) {
	s.TrackingEvents = append(s.TrackingEvents, upd.Event)
	s.Status = upd.Event.Status
	if upd.EstimatedDelivery != nil {
		t := *upd.EstimatedDelivery
		s.EstimatedDelivery = &t
	}
	if upd.Event.Status == ShipmentStatusDelivered {
		t := upd.Event.Timestamp
		s.ActualDelivery = &t
	}
	s.UpdatedAt = upd.Event.Timestamp
}

// CarrierCheck is the result of one carrier poll as stored on the shipment.
type CarrierCheck struct {
	CheckedAt   time.Time
	NextCheckAt time.Time
	Error       *string
}

// DueShipment is what the carrier-sync worker needs to poll a carrier.
type DueShipment struct {
	ShipmentID     string
	ProviderCode   string
	TrackingNumber string
	Status         string
	CheckFailCount int32
}
