package pgshipping

import (
	"context"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

const rateColumns = `
  id, provider_id, name, service_type,
  delivery_min_days, delivery_max_days,
  rate_structure, zones,
  free_shipping_threshold, max_weight, max_value,
  is_active, created_at, updated_at`

func scanRate(row rowScanner) (*models.ShippingRate, error) {
	var r models.ShippingRate
	var structure []byte
	if err := row.Scan(
		&r.ID, &r.ProviderID, &r.Name, &r.ServiceType,
		&r.DeliveryTime.Min, &r.DeliveryTime.Max,
		&structure, &r.Zones,
		&r.FreeShippingThreshold, &r.MaxWeight, &r.MaxValue,
		&r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rs, err := models.UnmarshalRateStructure(structure)
	if err != nil {
		return nil, errors.Wrapf(err, "rate %s", r.ID)
	}
	r.Structure = rs
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	if r.Zones == nil {
		r.Zones = []models.Zone{}
	}
	return &r, nil
}

func rateArgs(r *models.ShippingRate) ([]any, error) {
	structure, err := models.MarshalRateStructure(r.Structure)
	if err != nil {
		return nil, err
	}
	zones := r.Zones
	if zones == nil {
		zones = []models.Zone{}
	}
	return []any{
		r.ID, r.ProviderID, r.Name, r.ServiceType,
		r.DeliveryTime.Min, r.DeliveryTime.Max,
		string(structure), zones,
		r.FreeShippingThreshold, r.MaxWeight, r.MaxValue,
		r.IsActive, r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	}, nil
}

func (s *Storage) CreateRate(ctx context.Context, r *models.ShippingRate) error {
	args, err := rateArgs(r)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
INSERT INTO shipping_rates (`+rateColumns+`
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`, args...)
	if pgCode(err) == pgForeignKeyViolation {
		return errors.Wrapf(apperr.ErrNotFound, "provider %s", r.ProviderID)
	}
	return errors.Wrap(err, "insert rate")
}

func (s *Storage) UpdateRate(ctx context.Context, r *models.ShippingRate) error {
	args, err := rateArgs(r)
	if err != nil {
		return err
	}
	// created_at не меняем
	args = append(args[:12], args[13])
	tag, err := s.db.Exec(ctx, `
UPDATE shipping_rates
SET
  provider_id = $2,
  name = $3,
  service_type = $4,
  delivery_min_days = $5,
  delivery_max_days = $6,
  rate_structure = $7,
  zones = $8,
  free_shipping_threshold = $9,
  max_weight = $10,
  max_value = $11,
  is_active = $12,
  updated_at = $13
WHERE id = $1
`, args...)
	if pgCode(err) == pgForeignKeyViolation {
		return errors.Wrapf(apperr.ErrNotFound, "provider %s", r.ProviderID)
	}
	if err != nil {
		return errors.Wrap(err, "update rate")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "rate %s", r.ID)
	}
	return nil
}

func (s *Storage) GetRate(ctx context.Context, id string) (*models.ShippingRate, error) {
	row := s.db.QueryRow(ctx, `SELECT`+rateColumns+` FROM shipping_rates WHERE id = $1`, id)
	r, err := scanRate(row)
	if err != nil {
		return nil, notFound(err, "rate", id)
	}
	return r, nil
}

func (s *Storage) ListRates(ctx context.Context, f models.RateFilter) ([]*models.ShippingRate, error) {
	rows, err := s.db.Query(ctx, `SELECT`+rateColumns+`
FROM shipping_rates
WHERE ($1 = '' OR provider_id = $1)
  AND ($2 = FALSE OR is_active)
ORDER BY created_at ASC, id ASC
`, f.ProviderID, f.ActiveOnly)
	if err != nil {
		return nil, errors.Wrap(err, "select rates")
	}
	defer rows.Close()

	out := make([]*models.ShippingRate, 0)
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan rate")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
