package memshipping

import (
	"context"
	"sort"
	"time"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byTracking[sh.TrackingNumber]; taken {
		return errors.Errorf("tracking number %s already exists", sh.TrackingNumber)
	}
	s.shipments[sh.ID] = &shipmentRecord{s: cloneShipment(sh), nextCheckAt: sh.CreatedAt}
	s.byTracking[sh.TrackingNumber] = sh.ID
	return nil
}

func (s *Storage) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.shipments[id]
	if !ok {
		return nil, errors.Wrapf(apperr.ErrNotFound, "shipment %s", id)
	}
	return cloneShipment(rec.s), nil
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTracking[trackingNumber]
	if !ok {
		return nil, errors.Wrapf(apperr.ErrNotFound, "tracking number %s", trackingNumber)
	}
	return cloneShipment(s.shipments[id].s), nil
}

func (s *Storage) ListShipmentsByOrder(ctx context.Context, orderID string) ([]*models.Shipment, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Shipment, 0)
	for _, rec := range s.shipments {
		if rec.s.OrderID == orderID {
			out = append(out, cloneShipment(rec.s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Storage) AppendTrackingEvent(ctx context.Context, shipmentID string, upd models.TrackingAppend) (*models.Shipment, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.shipments[shipmentID]
	if !ok {
		return nil, errors.Wrapf(apperr.ErrNotFound, "shipment %s", shipmentID)
	}
	rec.s.Apply(upd)
	return cloneShipment(rec.s), nil
}

func (s *Storage) RecordCarrierCheck(ctx context.Context, shipmentID string, chk models.CarrierCheck) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.shipments[shipmentID]
	if !ok {
		return errors.Wrapf(apperr.ErrNotFound, "shipment %s", shipmentID)
	}
	checkedAt := chk.CheckedAt
	rec.lastCheckedAt = &checkedAt
	rec.nextCheckAt = chk.NextCheckAt
	if chk.Error != nil && *chk.Error != "" {
		rec.checkFailCount++
		e := *chk.Error
		rec.lastError = &e
	} else {
		rec.checkFailCount = 0
		rec.lastError = nil
	}
	return nil
}

// ClaimDueShipments mirrors pgshipping: due, non-terminal shipments are leased until now+lease.
func (s *Storage) ClaimDueShipments(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.DueShipment, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*shipmentRecord, 0)
	for _, rec := range s.shipments {
		if !rec.nextCheckAt.After(now) && !models.IsTerminalShipmentStatus(rec.s.Status) {
			due = append(due, rec)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].nextCheckAt.Before(due[j].nextCheckAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]models.DueShipment, 0, len(due))
	for _, rec := range due {
		rec.nextCheckAt = now.Add(lease)
		out = append(out, models.DueShipment{
			ShipmentID:     rec.s.ID,
			ProviderCode:   rec.s.ProviderCode,
			TrackingNumber: rec.s.TrackingNumber,
			Status:         rec.s.Status,
			CheckFailCount: rec.checkFailCount,
		})
	}
	return out, nil
}
