package pricing

import (
	"testing"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func metroZone(mult float64) []models.Zone {
	return []models.Zone{{Name: "metro", Pincodes: []string{"560001", "560002"}, Multiplier: mult}}
}

func TestCost_Flat_ZoneMultiplierOnly(t *testing.T) {
	r := &models.ShippingRate{IsActive: true, Structure: models.FlatRate{BaseRate: 50}, Zones: metroZone(1.5)}

	for _, pkg := range []models.Package{{Weight: 0.1, Value: 10}, {Weight: 30, Value: 50_000}} {
		c, ok := Cost(r, pkg, "560001")
		require.True(t, ok)
		require.Equal(t, 75.0, c)

		c, ok = Cost(r, pkg, "110001")
		require.True(t, ok)
		require.Equal(t, 50.0, c)
	}
}

func TestCost_WeightBased(t *testing.T) {
	r := &models.ShippingRate{
		IsActive: true,
		Structure: models.WeightBasedRate{Bands: []models.WeightBand{
			{MinWeight: 0, MaxWeight: 0.5, Rate: 40},
			{MinWeight: 0.5, MaxWeight: 1, Rate: 70},
		}},
		Zones: metroZone(1.2),
	}

	c, ok := Cost(r, models.Package{Weight: 0.7}, "560002")
	require.True(t, ok)
	require.Equal(t, 84.0, c)

	c, ok = Cost(r, models.Package{Weight: 0.7}, "999999")
	require.True(t, ok)
	require.Equal(t, 70.0, c)

	// boundaries are inclusive, first band wins
	c, ok = Cost(r, models.Package{Weight: 0.5}, "999999")
	require.True(t, ok)
	require.Equal(t, 40.0, c)

	_, ok = Cost(r, models.Package{Weight: 1.01}, "560001")
	require.False(t, ok)
}

func TestCost_DistanceBased_NeedsZone(t *testing.T) {
	r := &models.ShippingRate{
		IsActive:  true,
		Structure: models.DistanceBasedRate{BaseRate: 60},
		Zones:     metroZone(1.25),
	}

	c, ok := Cost(r, models.Package{Weight: 2}, "560001")
	require.True(t, ok)
	require.Equal(t, 75.0, c)

	_, ok = Cost(r, models.Package{Weight: 2}, "400001")
	require.False(t, ok)
}

func TestCost_ValueBased(t *testing.T) {
	r := &models.ShippingRate{IsActive: true, Structure: models.ValueBasedRate{ValuePercentage: 2.5}}

	c, ok := Cost(r, models.Package{Weight: 1, Value: 1000}, "400001")
	require.True(t, ok)
	require.Equal(t, 25.0, c)

	r.Zones = metroZone(2)
	c, ok = Cost(r, models.Package{Weight: 1, Value: 333}, "560001")
	require.True(t, ok)
	require.Equal(t, 16.65, c)
}

func TestCost_RoundsToCents(t *testing.T) {
	r := &models.ShippingRate{IsActive: true, Structure: models.FlatRate{BaseRate: 33.333}, Zones: metroZone(1.1)}
	c, ok := Cost(r, models.Package{Weight: 1}, "560001")
	require.True(t, ok)
	require.Equal(t, 36.67, c)
}

func TestCost_UnknownStructure(t *testing.T) {
	_, ok := Cost(&models.ShippingRate{IsActive: true}, models.Package{Weight: 1}, "560001")
	require.False(t, ok)
}

func TestEligible(t *testing.T) {
	r := &models.ShippingRate{IsActive: true, MaxWeight: f64(5), MaxValue: f64(1000)}
	require.True(t, Eligible(r, models.Package{Weight: 5, Value: 1000}))
	require.False(t, Eligible(r, models.Package{Weight: 5.1, Value: 10}))
	require.False(t, Eligible(r, models.Package{Weight: 1, Value: 1000.5}))

	r.IsActive = false
	require.False(t, Eligible(r, models.Package{Weight: 1}))
	require.False(t, Eligible(nil, models.Package{Weight: 1}))
}

func TestQuoteRate_FreeShipping(t *testing.T) {
	r := &models.ShippingRate{
		IsActive:              true,
		Structure:             models.FlatRate{BaseRate: 120},
		FreeShippingThreshold: f64(999),
	}

	q, ok := QuoteRate(r, models.Package{Weight: 1, Value: 1200}, "400001")
	require.True(t, ok)
	require.True(t, q.IsFreeShipping)
	require.Zero(t, q.Cost)

	q, ok = QuoteRate(r, models.Package{Weight: 1, Value: 999}, "400001")
	require.True(t, ok)
	require.True(t, q.IsFreeShipping)

	q, ok = QuoteRate(r, models.Package{Weight: 1, Value: 998.99}, "400001")
	require.True(t, ok)
	require.False(t, q.IsFreeShipping)
	require.Equal(t, 120.0, q.Cost)
}

func TestQuoteRate_NotApplicableWinsOverThreshold(t *testing.T) {
	r := &models.ShippingRate{
		IsActive:              true,
		Structure:             models.WeightBasedRate{Bands: []models.WeightBand{{MinWeight: 0, MaxWeight: 1, Rate: 10}}},
		FreeShippingThreshold: f64(100),
	}
	_, ok := QuoteRate(r, models.Package{Weight: 3, Value: 500}, "400001")
	require.False(t, ok)
}
