package pricing

import (
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Cost prices pkg shipped to pincode under rate. The second result is false when the rate
// has no answer for this package (no weight band, no zone for a distance rate, unknown
// structure); such rates are skipped by callers, never reported as errors.
func Cost(rate *models.ShippingRate, pkg models.Package, pincode string) (float64, bool) {
	var cost decimal.Decimal

	switch s := rate.Structure.(type) {
	case models.FlatRate:
		cost = decimal.NewFromFloat(s.BaseRate)
	case models.WeightBasedRate:
		band, ok := weightBand(s.Bands, pkg.Weight)
		if !ok {
			return 0, false
		}
		cost = decimal.NewFromFloat(band.Rate)
	case models.DistanceBasedRate:
		// Zone membership stands in for distance; the zone multiplier is the whole price.
		zone, ok := rate.ZoneFor(pincode)
		if !ok {
			return 0, false
		}
		return round2(decimal.NewFromFloat(s.BaseRate).Mul(decimal.NewFromFloat(zone.Multiplier))), true
	case models.ValueBasedRate:
		cost = decimal.NewFromFloat(pkg.Value).Mul(decimal.NewFromFloat(s.ValuePercentage)).Div(hundred)
	default:
		return 0, false
	}

	if zone, ok := rate.ZoneFor(pincode); ok {
		cost = cost.Mul(decimal.NewFromFloat(zone.Multiplier))
	}
	return round2(cost), true
}

func weightBand(bands []models.WeightBand, weight float64) (models.WeightBand, bool) {
	for _, b := range bands {
		if b.MinWeight <= weight && weight <= b.MaxWeight {
			return b, true
		}
	}
	return models.WeightBand{}, false
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Eligible checks the rate's activity flag and weight/value caps.
func Eligible(rate *models.ShippingRate, pkg models.Package) bool {
	if rate == nil || !rate.IsActive {
		return false
	}
	if rate.MaxWeight != nil && *rate.MaxWeight < pkg.Weight {
		return false
	}
	if rate.MaxValue != nil && *rate.MaxValue < pkg.Value {
		return false
	}
	return true
}

type Quote struct {
	Cost           float64
	IsFreeShipping bool
}

// QuoteRate is Cost plus the free-shipping threshold: at or above it the cost becomes 0.
func QuoteRate(rate *models.ShippingRate, pkg models.Package, pincode string) (Quote, bool) {
	cost, ok := Cost(rate, pkg, pincode)
	if !ok {
		return Quote{}, false
	}
	if rate.FreeShippingThreshold != nil && pkg.Value >= *rate.FreeShippingThreshold {
		return Quote{Cost: 0, IsFreeShipping: true}, true
	}
	return Quote{Cost: cost}, true
}
