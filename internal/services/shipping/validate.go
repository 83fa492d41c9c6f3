package shipping

import (
	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

func invalidf(format string, args ...any) error {
	return errors.Wrapf(apperr.ErrInvalid, format, args...)
}

func validateProvider(p *models.ShippingProvider) error {
	if p.Name == "" {
		return invalidf("name is required")
	}
	if p.Code == "" {
		return invalidf("code is required")
	}
	for i, a := range p.ServiceAreas {
		if a.Name == "" {
			return invalidf("serviceAreas[%d]: name is required", i)
		}
	}
	return nil
}

// validateRate enforces the write-time invariants of a rate plan, band min < max included.
func validateRate(r *models.ShippingRate) error {
	if r.ProviderID == "" {
		return invalidf("providerId is required")
	}
	if r.Name == "" {
		return invalidf("name is required")
	}
	if !models.IsKnownServiceType(r.ServiceType) {
		return invalidf("unknown serviceType %q", r.ServiceType)
	}
	if r.DeliveryTime.Min < 0 || r.DeliveryTime.Max < r.DeliveryTime.Min {
		return invalidf("deliveryTime must satisfy 0 <= min <= max")
	}

	switch st := r.Structure.(type) {
	case nil:
		return invalidf("rateStructure is required")
	case models.FlatRate:
		if st.BaseRate < 0 {
			return invalidf("baseRate must not be negative")
		}
	case models.WeightBasedRate:
		if len(st.Bands) == 0 {
			return invalidf("weightBands are required")
		}
		for i, b := range st.Bands {
			if b.MinWeight < 0 || b.MinWeight >= b.MaxWeight {
				return invalidf("weightBands[%d]: minWeight must be less than maxWeight", i)
			}
			if b.Rate < 0 {
				return invalidf("weightBands[%d]: rate must not be negative", i)
			}
		}
	case models.DistanceBasedRate:
		if st.BaseRate < 0 {
			return invalidf("baseRate must not be negative")
		}
		for i, b := range st.Bands {
			if b.MinDistance < 0 || b.MinDistance >= b.MaxDistance {
				return invalidf("distanceBands[%d]: minDistance must be less than maxDistance", i)
			}
			if b.Rate < 0 {
				return invalidf("distanceBands[%d]: rate must not be negative", i)
			}
		}
	case models.ValueBasedRate:
		if st.ValuePercentage < 0 {
			return invalidf("valuePercentage must not be negative")
		}
	default:
		return invalidf("unsupported rateStructure %q", st.Type())
	}

	for i, z := range r.Zones {
		if z.Name == "" {
			return invalidf("zones[%d]: name is required", i)
		}
		if z.Multiplier <= 0 {
			return invalidf("zones[%d]: multiplier must be greater than 0", i)
		}
	}
	if r.FreeShippingThreshold != nil && *r.FreeShippingThreshold < 0 {
		return invalidf("freeShippingThreshold must not be negative")
	}
	if r.MaxWeight != nil && *r.MaxWeight <= 0 {
		return invalidf("maxWeight must be greater than 0")
	}
	if r.MaxValue != nil && *r.MaxValue < 0 {
		return invalidf("maxValue must not be negative")
	}
	return nil
}
