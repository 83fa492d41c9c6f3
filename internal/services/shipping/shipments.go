package shipping

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/broker/messages"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/BearBump/ShipBox/internal/pricing"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const maxBulkItems = 1000

type CreateShipmentInput struct {
	OrderID     string         `json:"orderId"`
	ProviderID  string         `json:"providerId"`
	RateID      string         `json:"rateId"`
	FromPincode string         `json:"fromPincode"`
	Address     models.Address `json:"address"`
	Package     models.Package `json:"package"`
}

type TrackingUpdateInput struct {
	Status            string     `json:"status"`
	Location          string     `json:"location"`
	Description       string     `json:"description"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

type BulkTrackingItem struct {
	ShipmentID string `json:"shipmentId"`
	TrackingUpdateInput
}

type BulkFailure struct {
	ShipmentID string `json:"shipmentId"`
	Error      string `json:"error"`
}

type BulkResult struct {
	Successful int           `json:"successful"`
	Failed     []BulkFailure `json:"failed"`
}

func (s *Service) CreateShipment(ctx context.Context, in CreateShipmentInput) (*models.Shipment, error) {
	switch {
	case in.OrderID == "":
		return nil, errors.Wrap(apperr.ErrInvalid, "orderId is required")
	case in.ProviderID == "":
		return nil, errors.Wrap(apperr.ErrInvalid, "providerId is required")
	case in.RateID == "":
		return nil, errors.Wrap(apperr.ErrInvalid, "rateId is required")
	case in.Address.Pincode == "":
		return nil, errors.Wrap(apperr.ErrInvalid, "address.pincode is required")
	case in.Package.Weight <= 0:
		return nil, errors.Wrap(apperr.ErrInvalid, "package.weight must be greater than 0")
	case in.Package.Value < 0:
		return nil, errors.Wrap(apperr.ErrInvalid, "package.value must not be negative")
	}

	p, err := s.repo.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.GetRate(ctx, in.RateID)
	if err != nil {
		return nil, err
	}
	if r.ProviderID != p.ID {
		return nil, errors.Wrapf(apperr.ErrInvalid, "rate %s does not belong to provider %s", r.ID, p.ID)
	}
	if !p.Serves(in.Address.Pincode) {
		return nil, errors.Wrapf(apperr.ErrInvalid, "provider %s does not serve pincode %s", p.Code, in.Address.Pincode)
	}
	if !pricing.Eligible(r, in.Package) {
		return nil, errors.Wrapf(apperr.ErrInvalid, "rate %s is not available for this package", r.ID)
	}
	q, ok := pricing.QuoteRate(r, in.Package, in.Address.Pincode)
	if !ok {
		return nil, errors.Wrapf(apperr.ErrInvalid, "rate %s cannot price this package", r.ID)
	}

	now := s.now()
	eta := pricing.EstimatedDelivery(r, now)
	location := in.FromPincode
	if location == "" {
		location = "origin"
	}

	sh := &models.Shipment{
		ID:             uuid.NewString(),
		OrderID:        in.OrderID,
		ProviderID:     p.ID,
		ProviderCode:   p.Code,
		RateID:         r.ID,
		ServiceType:    r.ServiceType,
		TrackingNumber: newTrackingNumber(),
		ShippingCost:   q.Cost,
		IsFreeShipping: q.IsFreeShipping,
		FromPincode:    in.FromPincode,
		Address:        in.Address,
		Package:        in.Package,
		TrackingEvents: []models.TrackingEvent{{
			Status:      models.ShipmentStatusPending,
			Location:    location,
			Description: "Shipment created",
			Timestamp:   now,
		}},
		Status:            models.ShipmentStatusPending,
		EstimatedDelivery: &eta,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateShipment(ctx, sh); err != nil {
		return nil, err
	}

	slog.Info("shipment created",
		"shipment_id", sh.ID, "order_id", sh.OrderID, "provider", p.Code,
		"tracking_number", sh.TrackingNumber, "cost", sh.ShippingCost)
	s.storeTrackingView(ctx, sh, p)
	return sh, nil
}

func (s *Service) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	if id == "" {
		return nil, errors.Wrap(apperr.ErrInvalid, "shipment id is required")
	}
	return s.repo.GetShipment(ctx, id)
}

func (s *Service) ListShipmentsByOrder(ctx context.Context, orderID string) ([]*models.Shipment, error) {
	if orderID == "" {
		return nil, errors.Wrap(apperr.ErrInvalid, "orderId is required")
	}
	return s.repo.ListShipmentsByOrder(ctx, orderID)
}

// UpdateTracking appends one tracking event and mirrors its status onto the shipment.
// Transitions are not validated: any known status may follow any other.
func (s *Service) UpdateTracking(ctx context.Context, shipmentID string, in TrackingUpdateInput) (*models.Shipment, error) {
	if shipmentID == "" {
		return nil, errors.Wrap(apperr.ErrInvalid, "shipment id is required")
	}
	if in.Status == "" {
		return nil, errors.Wrap(apperr.ErrInvalid, "status is required")
	}
	if !models.IsKnownShipmentStatus(in.Status) {
		return nil, errors.Wrapf(apperr.ErrInvalid, "unknown status %q", in.Status)
	}

	return s.appendEvent(ctx, shipmentID, models.TrackingAppend{
		Event: models.TrackingEvent{
			Status:      in.Status,
			Location:    in.Location,
			Description: in.Description,
			Timestamp:   s.now(),
		},
		EstimatedDelivery: in.EstimatedDelivery,
	})
}

// BulkUpdateTracking applies every item on its own; failures are reported, not fatal.
func (s *Service) BulkUpdateTracking(ctx context.Context, items []BulkTrackingItem) (BulkResult, error) {
	if len(items) == 0 {
		return BulkResult{}, errors.Wrap(apperr.ErrInvalid, "updates is empty")
	}
	if len(items) > maxBulkItems {
		return BulkResult{}, errors.Wrapf(apperr.ErrInvalid, "too many updates (max %d)", maxBulkItems)
	}

	res := BulkResult{Failed: []BulkFailure{}}
	for _, it := range items {
		if _, err := s.UpdateTracking(ctx, it.ShipmentID, it.TrackingUpdateInput); err != nil {
			res.Failed = append(res.Failed, BulkFailure{ShipmentID: it.ShipmentID, Error: err.Error()})
			continue
		}
		res.Successful++
	}
	if len(res.Failed) > 0 {
		slog.Warn("bulk tracking update partially failed", "successful", res.Successful, "failed", len(res.Failed))
	}
	return res, nil
}

func (s *Service) appendEvent(ctx context.Context, shipmentID string, upd models.TrackingAppend) (*models.Shipment, error) {
	sh, err := s.repo.AppendTrackingEvent(ctx, shipmentID, upd)
	if err != nil {
		return nil, err
	}
	slog.Info("tracking event appended", "shipment_id", sh.ID, "status", sh.Status)

	if sh.Status == models.ShipmentStatusDelivered {
		s.publishOrderStatus(ctx, sh)
	}
	s.refreshTrackingView(ctx, sh)
	return sh, nil
}

// publishOrderStatus is best effort: the event is already stored, so a broker failure is
// logged rather than returned.
func (s *Service) publishOrderStatus(ctx context.Context, sh *models.Shipment) {
	msg := messages.OrderStatusChanged{
		OrderID:        sh.OrderID,
		ShipmentID:     sh.ID,
		TrackingNumber: sh.TrackingNumber,
		Status:         models.ShipmentStatusDelivered,
		ChangedAt:      s.now(),
	}
	if sh.ActualDelivery != nil {
		msg.ChangedAt = *sh.ActualDelivery
	}
	if s.publisher == nil {
		slog.Info("order delivered", "order_id", sh.OrderID, "shipment_id", sh.ID)
		return
	}
	if err := s.publisher.PublishJSON(ctx, s.orderStatusTopic, sh.OrderID, msg); err != nil {
		slog.Error("publish order status", "order_id", sh.OrderID, "shipment_id", sh.ID, "error", err.Error())
	}
}

// ApplyCarrierUpdate stores one carrier-sync result. A carrier event is appended only when
// its status differs from the shipment's current one.
func (s *Service) ApplyCarrierUpdate(ctx context.Context, msg messages.ShipmentTrackingUpdated) error {
	if msg.ShipmentID == "" {
		return errors.Wrap(apperr.ErrInvalid, "shipmentId is required")
	}
	if msg.CheckedAt.IsZero() {
		msg.CheckedAt = s.now()
	}
	if msg.NextCheckAt.IsZero() {
		// fallback: если воркер не прислал next_check_at, проверяем через час
		msg.NextCheckAt = msg.CheckedAt.Add(60 * time.Minute)
	}

	if msg.Error == nil && msg.Event != nil {
		ev := msg.Event
		if !models.IsKnownShipmentStatus(ev.Status) {
			slog.Warn("carrier reported unknown status", "shipment_id", msg.ShipmentID, "status", ev.Status, "status_raw", ev.StatusRaw)
		} else {
			sh, err := s.repo.GetShipment(ctx, msg.ShipmentID)
			if err != nil {
				return err
			}
			if sh.Status != ev.Status {
				if _, err := s.appendEvent(ctx, sh.ID, models.TrackingAppend{
					Event: models.TrackingEvent{
						Status:      ev.Status,
						Location:    ev.Location,
						Description: ev.Description,
						Timestamp:   s.now(),
					},
					EstimatedDelivery: ev.EstimatedDelivery,
				}); err != nil {
					return err
				}
			}
		}
	}

	return s.repo.RecordCarrierCheck(ctx, msg.ShipmentID, models.CarrierCheck{
		CheckedAt:   msg.CheckedAt,
		NextCheckAt: msg.NextCheckAt,
		Error:       msg.Error,
	})
}

func newTrackingNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SB" + strings.ToUpper(id[:12])
}
