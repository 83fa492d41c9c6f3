package pricing

import (
	"testing"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/stretchr/testify/suite"
)

type OptionsSuite struct {
	suite.Suite

	now time.Time
	cat Catalog
}

func (s *OptionsSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fast := &models.ShippingProvider{
		ID: "p-fast", Name: "FastShip", Code: "FAST", IsActive: true, Priority: 10,
		ServiceAreas: []models.ServiceArea{
			{Name: "south", Pincodes: []string{"560001", "560002"}, IsActive: true},
			{Name: "north", Pincodes: []string{"110001"}, IsActive: false},
		},
	}
	cheap := &models.ShippingProvider{
		ID: "p-cheap", Name: "CheapPost", Code: "CHEAP", IsActive: true, Priority: 1,
		ServiceAreas: []models.ServiceArea{
			{Name: "all", Pincodes: []string{"560001", "110001"}, IsActive: true},
		},
	}
	off := &models.ShippingProvider{
		ID: "p-off", Name: "Gone", Code: "GONE", IsActive: false,
		ServiceAreas: []models.ServiceArea{{Name: "all", Pincodes: []string{"560001"}, IsActive: true}},
	}

	s.cat = Catalog{
		Providers: []*models.ShippingProvider{fast, cheap, off},
		Rates: []*models.ShippingRate{
			{
				ID: "r-fast-exp", ProviderID: fast.ID, Name: "Express", ServiceType: models.ServiceTypeExpress,
				DeliveryTime: models.DeliveryTime{Min: 1, Max: 2},
				Structure:    models.WeightBasedRate{Bands: []models.WeightBand{{MinWeight: 0.5, MaxWeight: 1, Rate: 70}}},
				Zones:        metroZone(1.2),
				IsActive:     true,
			},
			{
				ID: "r-fast-std", ProviderID: fast.ID, Name: "Standard", ServiceType: models.ServiceTypeStandard,
				DeliveryTime:          models.DeliveryTime{Min: 3, Max: 5},
				Structure:             models.FlatRate{BaseRate: 40},
				FreeShippingThreshold: f64(999),
				IsActive:              true,
			},
			{
				ID: "r-cheap-std", ProviderID: cheap.ID, Name: "Saver", ServiceType: models.ServiceTypeStandard,
				DeliveryTime: models.DeliveryTime{Min: 4, Max: 7},
				Structure:    models.FlatRate{BaseRate: 30},
				MaxWeight:    f64(10),
				IsActive:     true,
			},
			{
				ID: "r-cheap-old", ProviderID: cheap.ID, Name: "Legacy", ServiceType: models.ServiceTypeStandard,
				Structure: models.FlatRate{BaseRate: 1},
				IsActive:  false,
			},
			{
				ID: "r-off", ProviderID: off.ID, Name: "Any", ServiceType: models.ServiceTypeStandard,
				Structure: models.FlatRate{BaseRate: 0.5},
				IsActive:  true,
			},
		},
	}
}

func (s *OptionsSuite) req(weight, value float64, to string) models.CalculateRequest {
	return models.CalculateRequest{Weight: weight, Value: value, FromPincode: "400001", ToPincode: to}
}

func (s *OptionsSuite) TestRankedByFreeThenCost() {
	opts := Options(s.cat, s.req(0.7, 1200, "560001"), s.now)
	s.Require().Len(opts, 3)

	s.Equal("r-fast-std", opts[0].RateID)
	s.True(opts[0].IsFreeShipping)
	s.Zero(opts[0].Cost)

	s.Equal("r-cheap-std", opts[1].RateID)
	s.Equal(30.0, opts[1].Cost)
	s.Equal("r-fast-exp", opts[2].RateID)
	s.Equal(84.0, opts[2].Cost)

	s.Equal(s.now.AddDate(0, 0, 5), opts[0].EstimatedDelivery)
	s.Equal(s.now.AddDate(0, 0, 7), opts[1].EstimatedDelivery)
}

func (s *OptionsSuite) TestExcludesInapplicableRates() {
	// 1.5kg is outside the express band and over no cap for the others.
	opts := Options(s.cat, s.req(1.5, 100, "560001"), s.now)
	ids := make([]string, 0, len(opts))
	for _, o := range opts {
		ids = append(ids, o.RateID)
	}
	s.ElementsMatch([]string{"r-fast-std", "r-cheap-std"}, ids)

	// 12kg exceeds the saver's maxWeight.
	opts = Options(s.cat, s.req(12, 100, "560001"), s.now)
	s.Require().Len(opts, 1)
	s.Equal("r-fast-std", opts[0].RateID)
}

func (s *OptionsSuite) TestInactiveServiceAreaExcludesProvider() {
	opts := Options(s.cat, s.req(1, 100, "110001"), s.now)
	s.Require().Len(opts, 1)
	s.Equal("p-cheap", opts[0].ProviderID)
}

func (s *OptionsSuite) TestUnservedPincodeYieldsEmpty() {
	opts := Options(s.cat, s.req(1, 100, "999999"), s.now)
	s.NotNil(opts)
	s.Empty(opts)
}

func (s *OptionsSuite) TestFilters() {
	r := s.req(0.7, 100, "560001")
	r.ServiceType = models.ServiceTypeExpress
	opts := Options(s.cat, r, s.now)
	s.Require().Len(opts, 1)
	s.Equal("r-fast-exp", opts[0].RateID)

	r = s.req(0.7, 100, "560001")
	r.ProviderID = "p-cheap"
	opts = Options(s.cat, r, s.now)
	s.Require().Len(opts, 1)
	s.Equal("r-cheap-std", opts[0].RateID)
}

func (s *OptionsSuite) TestRank_StableWithinGroups() {
	opts := []models.ShippingOption{
		{RateID: "a", Cost: 50},
		{RateID: "b", Cost: 0, IsFreeShipping: true},
		{RateID: "c", Cost: 20},
		{RateID: "d", Cost: 20},
		{RateID: "e", Cost: 0, IsFreeShipping: true},
	}
	Rank(opts)

	got := make([]string, 0, len(opts))
	for _, o := range opts {
		got = append(got, o.RateID)
	}
	s.Equal([]string{"b", "e", "c", "d", "a"}, got)
}

func TestOptionsSuite(t *testing.T) {
	suite.Run(t, new(OptionsSuite))
}
