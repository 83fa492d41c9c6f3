package pgshipping

import (
	"context"
	"time"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

const shipmentColumns = `
  id, order_id, provider_id, provider_code, rate_id, service_type,
  tracking_number, shipping_cost, is_free_shipping, from_pincode,
  address, package, status,
  estimated_delivery, actual_delivery,
  created_at, updated_at`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var sh models.Shipment
	if err := row.Scan(
		&sh.ID, &sh.OrderID, &sh.ProviderID, &sh.ProviderCode, &sh.RateID, &sh.ServiceType,
		&sh.TrackingNumber, &sh.ShippingCost, &sh.IsFreeShipping, &sh.FromPincode,
		&sh.Address, &sh.Package, &sh.Status,
		&sh.EstimatedDelivery, &sh.ActualDelivery,
		&sh.CreatedAt, &sh.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sh.EstimatedDelivery = utcPtr(sh.EstimatedDelivery)
	sh.ActualDelivery = utcPtr(sh.ActualDelivery)
	sh.CreatedAt = sh.CreatedAt.UTC()
	sh.UpdatedAt = sh.UpdatedAt.UTC()
	return &sh, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// loadEvents fills TrackingEvents in insertion order.
func loadEvents(ctx context.Context, q querier, shipments ...*models.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	ids := make([]string, 0, len(shipments))
	byID := make(map[string]*models.Shipment, len(shipments))
	for _, sh := range shipments {
		sh.TrackingEvents = []models.TrackingEvent{}
		ids = append(ids, sh.ID)
		byID[sh.ID] = sh
	}

	rows, err := q.Query(ctx, `
SELECT shipment_id, status, location, description, event_time
FROM shipment_events
WHERE shipment_id = ANY($1)
ORDER BY id ASC
`, ids)
	if err != nil {
		return errors.Wrap(err, "select events")
	}
	defer rows.Close()

	for rows.Next() {
		var shipmentID string
		var e models.TrackingEvent
		if err := rows.Scan(&shipmentID, &e.Status, &e.Location, &e.Description, &e.Timestamp); err != nil {
			return errors.Wrap(err, "scan event")
		}
		e.Timestamp = e.Timestamp.UTC()
		if sh, ok := byID[shipmentID]; ok {
			sh.TrackingEvents = append(sh.TrackingEvents, e)
		}
	}
	return errors.Wrap(rows.Err(), "rows")
}

func insertEvent(ctx context.Context, tx pgx.Tx, shipmentID string, e models.TrackingEvent) error {
	_, err := tx.Exec(ctx, `
INSERT INTO shipment_events (shipment_id, status, location, description, event_time)
VALUES ($1,$2,$3,$4,$5)
`, shipmentID, e.Status, e.Location, e.Description, e.Timestamp.UTC())
	return errors.Wrap(err, "insert event")
}

func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Новая отправка сразу попадает в выборку воркера.
	_, err = tx.Exec(ctx, `
INSERT INTO shipments (`+shipmentColumns+`,
  next_check_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$16)
`, sh.ID, sh.OrderID, sh.ProviderID, sh.ProviderCode, sh.RateID, sh.ServiceType,
		sh.TrackingNumber, sh.ShippingCost, sh.IsFreeShipping, sh.FromPincode,
		sh.Address, sh.Package, sh.Status,
		utcPtr(sh.EstimatedDelivery), utcPtr(sh.ActualDelivery),
		sh.CreatedAt.UTC(), sh.UpdatedAt.UTC())
	if err != nil {
		return errors.Wrap(err, "insert shipment")
	}

	for _, e := range sh.TrackingEvents {
		if err := insertEvent(ctx, tx, sh.ID, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func (s *Storage) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	return s.getShipment(ctx, `id = $1`, id)
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	return s.getShipment(ctx, `tracking_number = $1`, trackingNumber)
}

func (s *Storage) getShipment(ctx context.Context, where, arg string) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+` FROM shipments WHERE `+where, arg)
	sh, err := scanShipment(row)
	if err != nil {
		return nil, notFound(err, "shipment", arg)
	}
	if err := loadEvents(ctx, s.db, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Storage) ListShipmentsByOrder(ctx context.Context, orderID string) ([]*models.Shipment, error) {
	rows, err := s.db.Query(ctx, `SELECT`+shipmentColumns+`
FROM shipments
WHERE order_id = $1
ORDER BY created_at ASC, id ASC
`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	out := make([]*models.Shipment, 0)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	rows.Close()

	if err := loadEvents(ctx, s.db, out...); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendTrackingEvent locks the shipment row, so concurrent appends are serialized and
// none of them is lost.
func (s *Storage) AppendTrackingEvent(ctx context.Context, shipmentID string, upd models.TrackingAppend) (*models.Shipment, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT`+shipmentColumns+` FROM shipments WHERE id = $1 FOR UPDATE`, shipmentID)
	sh, err := scanShipment(row)
	if err != nil {
		return nil, notFound(err, "shipment", shipmentID)
	}
	if err := loadEvents(ctx, tx, sh); err != nil {
		return nil, err
	}

	sh.Apply(upd)

	if err := insertEvent(ctx, tx, sh.ID, upd.Event); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
UPDATE shipments
SET
  status = $2,
  estimated_delivery = $3,
  actual_delivery = $4,
  updated_at = $5
WHERE id = $1
`, sh.ID, sh.Status, utcPtr(sh.EstimatedDelivery), utcPtr(sh.ActualDelivery), sh.UpdatedAt.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "update shipment")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return sh, nil
}

func (s *Storage) RecordCarrierCheck(ctx context.Context, shipmentID string, chk models.CarrierCheck) error {
	var err error
	var tag pgconn.CommandTag
	if chk.Error != nil && *chk.Error != "" {
		tag, err = s.db.Exec(ctx, `
UPDATE shipments
SET
  last_checked_at = $2,
  check_fail_count = check_fail_count + 1,
  last_error = $3,
  next_check_at = $4
WHERE id = $1
`, shipmentID, chk.CheckedAt.UTC(), *chk.Error, chk.NextCheckAt.UTC())
	} else {
		tag, err = s.db.Exec(ctx, `
UPDATE shipments
SET
  last_checked_at = $2,
  check_fail_count = 0,
  last_error = NULL,
  next_check_at = $3
WHERE id = $1
`, shipmentID, chk.CheckedAt.UTC(), chk.NextCheckAt.UTC())
	}
	if err != nil {
		return errors.Wrap(err, "update carrier check")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "shipment %s", shipmentID)
	}
	return nil
}

// ClaimDueShipments выбирает пачку отправок, готовых к опросу перевозчика, и "бронирует" их
// до now+lease, чтобы параллельные воркеры их не взяли.
// Использует SELECT ... FOR UPDATE SKIP LOCKED.
func (s *Storage) ClaimDueShipments(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]models.DueShipment, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
SELECT id, provider_code, tracking_number, status, check_fail_count
FROM shipments
WHERE next_check_at <= $1
  AND status <> ALL($2)
ORDER BY next_check_at ASC
LIMIT $3
FOR UPDATE SKIP LOCKED
`, now.UTC(), []string{
		models.ShipmentStatusDelivered,
		models.ShipmentStatusReturned,
		models.ShipmentStatusFailedDelivery,
	}, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due shipments")
	}
	defer rows.Close()

	var picked []models.DueShipment
	for rows.Next() {
		var d models.DueShipment
		if err := rows.Scan(&d.ShipmentID, &d.ProviderCode, &d.TrackingNumber, &d.Status, &d.CheckFailCount); err != nil {
			return nil, errors.Wrap(err, "scan due shipment")
		}
		picked = append(picked, d)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	rows.Close()

	leaseUntil := now.UTC().Add(lease)
	for _, d := range picked {
		_, err := tx.Exec(ctx, `UPDATE shipments SET next_check_at = $2 WHERE id = $1`, d.ShipmentID, leaseUntil)
		if err != nil {
			return nil, errors.Wrap(err, "lease shipment")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}
