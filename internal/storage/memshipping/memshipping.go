// Package memshipping is the in-memory storage backend, selected with storage_backend: memory.
// It has the same not-found and uniqueness semantics as pgshipping, but nothing survives a restart.
package memshipping

import (
	"context"
	"sync"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
)

type shipmentRecord struct {
	s *models.Shipment

	nextCheckAt    time.Time
	lastCheckedAt  *time.Time
	checkFailCount int32
	lastError      *string
}

type Storage struct {
	mu sync.RWMutex

	providers     map[string]*models.ShippingProvider
	providerCodes map[string]string
	rates         map[string]*models.ShippingRate
	shipments     map[string]*shipmentRecord
	byTracking    map[string]string
}

func New() *Storage {
	return &Storage{
		providers:     make(map[string]*models.ShippingProvider),
		providerCodes: make(map[string]string),
		rates:         make(map[string]*models.ShippingRate),
		shipments:     make(map[string]*shipmentRecord),
		byTracking:    make(map[string]string),
	}
}

func (s *Storage) Close() {}

func alive(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneProvider(p *models.ShippingProvider) *models.ShippingProvider {
	out := *p
	out.ServiceAreas = make([]models.ServiceArea, len(p.ServiceAreas))
	for i, a := range p.ServiceAreas {
		a.Pincodes = cloneStrings(a.Pincodes)
		out.ServiceAreas[i] = a
	}
	return &out
}

func cloneRate(r *models.ShippingRate) *models.ShippingRate {
	out := *r
	switch st := r.Structure.(type) {
	case models.WeightBasedRate:
		out.Structure = models.WeightBasedRate{Bands: append([]models.WeightBand(nil), st.Bands...)}
	case models.DistanceBasedRate:
		out.Structure = models.DistanceBasedRate{BaseRate: st.BaseRate, Bands: append([]models.DistanceBand(nil), st.Bands...)}
	}
	out.Zones = make([]models.Zone, len(r.Zones))
	for i, z := range r.Zones {
		z.Pincodes = cloneStrings(z.Pincodes)
		out.Zones[i] = z
	}
	out.FreeShippingThreshold = cloneFloat(r.FreeShippingThreshold)
	out.MaxWeight = cloneFloat(r.MaxWeight)
	out.MaxValue = cloneFloat(r.MaxValue)
	return &out
}

func cloneShipment(sh *models.Shipment) *models.Shipment {
	out := *sh
	out.TrackingEvents = append([]models.TrackingEvent(nil), sh.TrackingEvents...)
	out.EstimatedDelivery = cloneTime(sh.EstimatedDelivery)
	out.ActualDelivery = cloneTime(sh.ActualDelivery)
	return &out
}
