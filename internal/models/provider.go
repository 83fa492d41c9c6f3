package models

import "time"

type ServiceArea struct {
	Name     string   `json:"name"`
	Pincodes []string `json:"pincodes"`
	IsActive bool     `json:"isActive"`
}

type ProviderCapabilities struct {
	CashOnDelivery  bool `json:"cashOnDelivery"`
	Tracking        bool `json:"tracking"`
	Insurance       bool `json:"insurance"`
	ExpressDelivery bool `json:"expressDelivery"`
}

type ShippingProvider struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Code         string               `json:"code"`
	ServiceAreas []ServiceArea        `json:"serviceAreas"`
	Capabilities ProviderCapabilities `json:"capabilities"`
	Priority     int                  `json:"priority"`
	IsActive     bool                 `json:"isActive"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Serves reports whether an active provider has an active service area containing pincode.
func (p *ShippingProvider) Serves(pincode string) bool {
	if p == nil || !p.IsActive {
		return false
	}
	for _, a := range p.ServiceAreas {
		if a.IsActive && containsPincode(a.Pincodes, pincode) {
			return true
		}
	}
	return false
}

func containsPincode(set []string, pincode string) bool {
	for _, p := range set {
		if p == pincode {
			return true
		}
	}
	return false
}
