package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// TrackingView is the public tracking page of a shipment.
type TrackingView struct {
	TrackingNumber    string                 `json:"trackingNumber"`
	ShipmentID        string                 `json:"shipmentId"`
	OrderID           string                 `json:"orderId"`
	Status            string                 `json:"status"`
	EstimatedDelivery *time.Time             `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time             `json:"actualDelivery,omitempty"`
	Events            []models.TrackingEvent `json:"events"`
	Provider          ProviderInfo           `json:"provider"`
}

func (s *Service) GetTracking(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	if trackingNumber == "" {
		return nil, errors.Wrap(apperr.ErrInvalid, "trackingNumber is required")
	}

	if s.cacheEnabled() {
		b, ok, err := s.cache.Get(ctx, trackingKey(trackingNumber))
		if err == nil && ok {
			var v TrackingView
			if json.Unmarshal(b, &v) == nil {
				return &v, nil
			}
		}
	}

	sh, err := s.repo.GetShipmentByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetProvider(ctx, sh.ProviderID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.storeTrackingView(ctx, sh, p), nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.trackingTTL > 0
}

// refreshTrackingView rewrites the cached view after a change; without the provider the
// entry is dropped instead.
func (s *Service) refreshTrackingView(ctx context.Context, sh *models.Shipment) {
	if !s.cacheEnabled() {
		return
	}
	p, err := s.repo.GetProvider(ctx, sh.ProviderID)
	if err != nil {
		_ = s.cache.Delete(ctx, trackingKey(sh.TrackingNumber))
		return
	}
	s.storeTrackingView(ctx, sh, p)
}

// storeTrackingView caches the view of sh and returns the freshest view it knows of. A write
// can race with an append that committed after sh was read, so the shipment is read again
// after the write: if events were added meanwhile, the stale entry is dropped. Events are
// append-only, so their count orders snapshots.
func (s *Service) storeTrackingView(ctx context.Context, sh *models.Shipment, p *models.ShippingProvider) *TrackingView {
	v := newTrackingView(sh, p)
	if !s.cacheEnabled() {
		return v
	}
	key := trackingKey(sh.TrackingNumber)
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := s.cache.Set(ctx, key, b, s.trackingTTL); err != nil {
		slog.Warn("cache tracking view", "tracking_number", sh.TrackingNumber, "error", err.Error())
		return v
	}

	cur, err := s.repo.GetShipment(ctx, sh.ID)
	if err != nil {
		// не можем проверить свежесть, лучше промах кеша
		_ = s.cache.Delete(ctx, key)
		return v
	}
	if len(cur.TrackingEvents) != len(sh.TrackingEvents) {
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.Warn("drop stale tracking view", "tracking_number", sh.TrackingNumber, "error", err.Error())
		}
		return newTrackingView(cur, p)
	}
	return v
}

func newTrackingView(sh *models.Shipment, p *models.ShippingProvider) *TrackingView {
	v := &TrackingView{
		TrackingNumber:    sh.TrackingNumber,
		ShipmentID:        sh.ID,
		OrderID:           sh.OrderID,
		Status:            sh.Status,
		EstimatedDelivery: sh.EstimatedDelivery,
		ActualDelivery:    sh.ActualDelivery,
		Events:            sh.TrackingEvents,
		Provider:          ProviderInfo{ID: sh.ProviderID, Code: sh.ProviderCode},
	}
	if p != nil {
		v.Provider.Name = p.Name
		v.Provider.Code = p.Code
	}
	if v.Events == nil {
		v.Events = []models.TrackingEvent{}
	}
	return v
}

func trackingKey(trackingNumber string) string {
	return fmt.Sprintf("shipment:tracking:%s", trackingNumber)
}
