package pgshipping

import (
	"context"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

const providerColumns = `
  id, name, code, service_areas, capabilities,
  priority, is_active, created_at, updated_at`

func scanProvider(row rowScanner) (*models.ShippingProvider, error) {
	var p models.ShippingProvider
	if err := row.Scan(
		&p.ID, &p.Name, &p.Code, &p.ServiceAreas, &p.Capabilities,
		&p.Priority, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.ServiceAreas == nil {
		p.ServiceAreas = []models.ServiceArea{}
	}
	return &p, nil
}

func serviceAreas(p *models.ShippingProvider) []models.ServiceArea {
	if p.ServiceAreas == nil {
		return []models.ServiceArea{}
	}
	return p.ServiceAreas
}

func (s *Storage) CreateProvider(ctx context.Context, p *models.ShippingProvider) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO shipping_providers (
  id, name, code, service_areas, capabilities, priority, is_active, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, p.ID, p.Name, p.Code, serviceAreas(p), p.Capabilities, p.Priority, p.IsActive,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if pgCode(err) == pgUniqueViolation {
		return errors.Wrapf(apperr.ErrInvalid, "provider code %s already exists", p.Code)
	}
	return errors.Wrap(err, "insert provider")
}

func (s *Storage) UpdateProvider(ctx context.Context, p *models.ShippingProvider) error {
	tag, err := s.db.Exec(ctx, `
UPDATE shipping_providers
SET
  name = $2,
  code = $3,
  service_areas = $4,
  capabilities = $5,
  priority = $6,
  is_active = $7,
  updated_at = $8
WHERE id = $1
`, p.ID, p.Name, p.Code, serviceAreas(p), p.Capabilities, p.Priority, p.IsActive, p.UpdatedAt.UTC())
	if pgCode(err) == pgUniqueViolation {
		return errors.Wrapf(apperr.ErrInvalid, "provider code %s already exists", p.Code)
	}
	if err != nil {
		return errors.Wrap(err, "update provider")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(apperr.ErrNotFound, "provider %s", p.ID)
	}
	return nil
}

func (s *Storage) GetProvider(ctx context.Context, id string) (*models.ShippingProvider, error) {
	row := s.db.QueryRow(ctx, `SELECT`+providerColumns+` FROM shipping_providers WHERE id = $1`, id)
	p, err := scanProvider(row)
	if err != nil {
		return nil, notFound(err, "provider", id)
	}
	return p, nil
}

func (s *Storage) ListProviders(ctx context.Context, activeOnly bool) ([]*models.ShippingProvider, error) {
	rows, err := s.db.Query(ctx, `SELECT`+providerColumns+`
FROM shipping_providers
WHERE ($1 = FALSE OR is_active)
ORDER BY priority DESC, name ASC
`, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "select providers")
	}
	defer rows.Close()

	out := make([]*models.ShippingProvider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan provider")
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
