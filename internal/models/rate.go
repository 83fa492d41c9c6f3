package models

import "time"

const (
	ServiceTypeStandard  = "standard"
	ServiceTypeExpress   = "express"
	ServiceTypeOvernight = "overnight"
	ServiceTypeSameDay   = "same_day"
)

const (
	RateTypeFlat          = "flat"
	RateTypeWeightBased   = "weight_based"
	RateTypeDistanceBased = "distance_based"
	RateTypeValueBased    = "value_based"
)

// RateStructure is one of FlatRate, WeightBasedRate, DistanceBasedRate, ValueBasedRate.
type RateStructure interface {
	Type() string
	isRateStructure()
}

type FlatRate struct {
	BaseRate float64
}

type WeightBand struct {
	MinWeight float64 `json:"minWeight"`
	MaxWeight float64 `json:"maxWeight"`
	Rate      float64 `json:"rate"`
}

type WeightBasedRate struct {
	Bands []WeightBand
}

type DistanceBand struct {
	MinDistance float64 `json:"minDistance"`
	MaxDistance float64 `json:"maxDistance"`
	Rate        float64 `json:"rate"`
}

// DistanceBasedRate is priced by zone membership of the destination.
// Bands are kept for the admin surface and validated, the calculator does not read them.
type DistanceBasedRate struct {
	BaseRate float64
	Bands    []DistanceBand
}

type ValueBasedRate struct {
	ValuePercentage float64
}

func (FlatRate) Type() string          { return RateTypeFlat }
func (WeightBasedRate) Type() string   { return RateTypeWeightBased }
func (DistanceBasedRate) Type() string { return RateTypeDistanceBased }
func (ValueBasedRate) Type() string    { return RateTypeValueBased }

func (FlatRate) isRateStructure()          {}
func (WeightBasedRate) isRateStructure()   {}
func (DistanceBasedRate) isRateStructure() {}
func (ValueBasedRate) isRateStructure()    {}

type Zone struct {
	Name       string   `json:"name"`
	Pincodes   []string `json:"pincodes"`
	Multiplier float64  `json:"multiplier"`
}

func (z Zone) Contains(pincode string) bool {
	return containsPincode(z.Pincodes, pincode)
}

// DeliveryTime is a window in days.
type DeliveryTime struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type ShippingRate struct {
	ID                    string        `json:"id"`
	ProviderID            string        `json:"providerId"`
	Name                  string        `json:"name"`
	ServiceType           string        `json:"serviceType"`
	DeliveryTime          DeliveryTime  `json:"deliveryTime"`
	Structure             RateStructure `json:"-"`
	Zones                 []Zone        `json:"zones"`
	FreeShippingThreshold *float64      `json:"freeShippingThreshold,omitempty"`
	MaxWeight             *float64      `json:"maxWeight,omitempty"`
	MaxValue              *float64      `json:"maxValue,omitempty"`
	IsActive              bool          `json:"isActive"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// ZoneFor returns the first zone whose pincode set contains the destination.
func (r *ShippingRate) ZoneFor(pincode string) (Zone, bool) {
	for _, z := range r.Zones {
		if z.Contains(pincode) {
			return z, true
		}
	}
	return Zone{}, false
}

func IsKnownServiceType(s string) bool {
	switch s {
	case ServiceTypeStandard, ServiceTypeExpress, ServiceTypeOvernight, ServiceTypeSameDay:
		return true
	}
	return false
}

type RateFilter struct {
	ProviderID string
	ActiveOnly bool
}
