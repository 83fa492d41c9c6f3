package pricing

import (
	"sort"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
)

// Catalog is the provider/rate snapshot options are computed from.
type Catalog struct {
	Providers []*models.ShippingProvider
	Rates     []*models.ShippingRate
}

// Options lists every way to ship req, ranked. An empty result means nothing ships to
// req.ToPincode.
func Options(cat Catalog, req models.CalculateRequest, now time.Time) []models.ShippingOption {
	byProvider := make(map[string][]*models.ShippingRate, len(cat.Providers))
	for _, r := range cat.Rates {
		byProvider[r.ProviderID] = append(byProvider[r.ProviderID], r)
	}

	pkg := req.Package()
	out := make([]models.ShippingOption, 0)
	for _, p := range cat.Providers {
		if req.ProviderID != "" && p.ID != req.ProviderID {
			continue
		}
		if !p.Serves(req.ToPincode) {
			continue
		}
		for _, r := range byProvider[p.ID] {
			if req.ServiceType != "" && r.ServiceType != req.ServiceType {
				continue
			}
			if !Eligible(r, pkg) {
				continue
			}
			q, ok := QuoteRate(r, pkg, req.ToPincode)
			if !ok {
				continue
			}
			out = append(out, models.ShippingOption{
				ProviderID:        p.ID,
				ProviderName:      p.Name,
				ProviderCode:      p.Code,
				RateID:            r.ID,
				RateName:          r.Name,
				ServiceType:       r.ServiceType,
				Cost:              q.Cost,
				IsFreeShipping:    q.IsFreeShipping,
				DeliveryTime:      r.DeliveryTime,
				EstimatedDelivery: EstimatedDelivery(r, now),
			})
		}
	}

	Rank(out)
	return out
}

func EstimatedDelivery(rate *models.ShippingRate, now time.Time) time.Time {
	return now.AddDate(0, 0, rate.DeliveryTime.Max)
}

// Rank puts free-shipping options first, then cheaper ones. Ties keep input order.
func Rank(opts []models.ShippingOption) {
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].IsFreeShipping != opts[j].IsFreeShipping {
			return opts[i].IsFreeShipping
		}
		return opts[i].Cost < opts[j].Cost
	})
}
