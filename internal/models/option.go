package models

import "time"

type CalculateRequest struct {
	Weight      float64    `json:"weight"`
	Dimensions  Dimensions `json:"dimensions"`
	Value       float64    `json:"value"`
	FromPincode string     `json:"fromPincode"`
	ToPincode   string     `json:"toPincode"`
	ServiceType string     `json:"serviceType,omitempty"`
	ProviderID  string     `json:"providerId,omitempty"`
}

func (r CalculateRequest) Package() Package {
	return Package{Weight: r.Weight, Dimensions: r.Dimensions, Value: r.Value}
}

type ShippingOption struct {
	ProviderID        string       `json:"providerId"`
	ProviderName      string       `json:"providerName"`
	ProviderCode      string       `json:"providerCode"`
	RateID            string       `json:"rateId"`
	RateName          string       `json:"rateName"`
	ServiceType       string       `json:"serviceType"`
	Cost              float64      `json:"cost"`
	IsFreeShipping    bool         `json:"isFreeShipping"`
	DeliveryTime      DeliveryTime `json:"deliveryTime"`
	EstimatedDelivery time.Time    `json:"estimatedDelivery"`
}
