package shipping

import (
	"context"
	"time"

	"github.com/BearBump/ShipBox/internal/cache"
	"github.com/BearBump/ShipBox/internal/models"
)

type ProviderRepository interface {
	CreateProvider(ctx context.Context, p *models.ShippingProvider) error
	UpdateProvider(ctx context.Context, p *models.ShippingProvider) error
	GetProvider(ctx context.Context, id string) (*models.ShippingProvider, error)
	ListProviders(ctx context.Context, activeOnly bool) ([]*models.ShippingProvider, error)
}

type RateRepository interface {
	CreateRate(ctx context.Context, r *models.ShippingRate) error
	UpdateRate(ctx context.Context, r *models.ShippingRate) error
	GetRate(ctx context.Context, id string) (*models.ShippingRate, error)
	ListRates(ctx context.Context, f models.RateFilter) ([]*models.ShippingRate, error)
}

type ShipmentRepository interface {
	CreateShipment(ctx context.Context, s *models.Shipment) error
	GetShipment(ctx context.Context, id string) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListShipmentsByOrder(ctx context.Context, orderID string) ([]*models.Shipment, error)
	AppendTrackingEvent(ctx context.Context, shipmentID string, upd models.TrackingAppend) (*models.Shipment, error)
	RecordCarrierCheck(ctx context.Context, shipmentID string, chk models.CarrierCheck) error
}

// Repository is implemented by pgshipping.Storage and memshipping.Storage.
// Lookups of missing records return an error wrapping apperr.ErrNotFound.
type Repository interface {
	ProviderRepository
	RateRepository
	ShipmentRepository
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v any) error
}

const defaultOrderStatusTopic = "order.status"

type Service struct {
	repo      Repository
	cache     cache.BytesCache
	publisher Publisher

	trackingTTL      time.Duration
	orderStatusTopic string

	now func() time.Time
}

// New wires the service. c and pub may be nil: tracking views are then always read from
// the repository and order-status changes are only logged.
func New(repo Repository, c cache.BytesCache, pub Publisher, trackingTTL time.Duration) *Service {
	return &Service{
		repo:             repo,
		cache:            c,
		publisher:        pub,
		trackingTTL:      trackingTTL,
		orderStatusTopic: defaultOrderStatusTopic,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithOrderStatusTopic(topic string) *Service {
	if topic != "" {
		s.orderStatusTopic = topic
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}
