package shipping

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/google/uuid"
)

// CreateProvider stores a new provider. Providers start active; id and timestamps are assigned here.
func (s *Service) CreateProvider(ctx context.Context, p models.ShippingProvider) (*models.ShippingProvider, error) {
	p.Code = normalizeCode(p.Code)
	if err := validateProvider(&p); err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.CreateProvider(ctx, &p); err != nil {
		return nil, err
	}
	slog.Info("provider created", "provider_id", p.ID, "code", p.Code)
	return &p, nil
}

// ProviderUpdate replaces the editable fields of a provider. IsActive is nil when the caller
// did not send it; the stored flag is kept then.
type ProviderUpdate struct {
	Provider models.ShippingProvider
	IsActive *bool
}

// UpdateProvider replaces the editable fields of provider id.
func (s *Service) UpdateProvider(ctx context.Context, id string, upd ProviderUpdate) (*models.ShippingProvider, error) {
	cur, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	in := upd.Provider
	in.Code = normalizeCode(in.Code)
	if err := validateProvider(&in); err != nil {
		return nil, err
	}

	in.ID = cur.ID
	in.IsActive = cur.IsActive
	if upd.IsActive != nil {
		in.IsActive = *upd.IsActive
	}
	in.CreatedAt = cur.CreatedAt
	in.UpdatedAt = s.now()
	if err := s.repo.UpdateProvider(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// DeactivateProvider is the soft delete: the provider stays stored with isActive=false.
func (s *Service) DeactivateProvider(ctx context.Context, id string) (*models.ShippingProvider, error) {
	p, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsActive = false
	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProvider(ctx, p); err != nil {
		return nil, err
	}
	slog.Info("provider deactivated", "provider_id", p.ID, "code", p.Code)
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, id string) (*models.ShippingProvider, error) {
	return s.repo.GetProvider(ctx, id)
}

func (s *Service) ListProviders(ctx context.Context, activeOnly bool) ([]*models.ShippingProvider, error) {
	return s.repo.ListProviders(ctx, activeOnly)
}

// CreateRate stores a new active rate plan for an existing provider.
func (s *Service) CreateRate(ctx context.Context, r models.ShippingRate) (*models.ShippingRate, error) {
	if err := validateRate(&r); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetProvider(ctx, r.ProviderID); err != nil {
		return nil, err
	}
	now := s.now()
	r.ID = uuid.NewString()
	r.IsActive = true
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.repo.CreateRate(ctx, &r); err != nil {
		return nil, err
	}
	slog.Info("rate created", "rate_id", r.ID, "provider_id", r.ProviderID, "type", r.Structure.Type())
	return &r, nil
}

// RateUpdate replaces a rate plan. IsActive is nil when the caller did not send it; the
// stored flag is kept then.
type RateUpdate struct {
	Rate     models.ShippingRate
	IsActive *bool
}

func (s *Service) UpdateRate(ctx context.Context, id string, upd RateUpdate) (*models.ShippingRate, error) {
	cur, err := s.repo.GetRate(ctx, id)
	if err != nil {
		return nil, err
	}
	in := upd.Rate
	if in.ProviderID == "" {
		in.ProviderID = cur.ProviderID
	}
	if err := validateRate(&in); err != nil {
		return nil, err
	}
	if in.ProviderID != cur.ProviderID {
		if _, err := s.repo.GetProvider(ctx, in.ProviderID); err != nil {
			return nil, err
		}
	}

	in.ID = cur.ID
	in.IsActive = cur.IsActive
	if upd.IsActive != nil {
		in.IsActive = *upd.IsActive
	}
	in.CreatedAt = cur.CreatedAt
	in.UpdatedAt = s.now()
	if err := s.repo.UpdateRate(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Service) DeactivateRate(ctx context.Context, id string) (*models.ShippingRate, error) {
	r, err := s.repo.GetRate(ctx, id)
	if err != nil {
		return nil, err
	}
	r.IsActive = false
	r.UpdatedAt = s.now()
	if err := s.repo.UpdateRate(ctx, r); err != nil {
		return nil, err
	}
	slog.Info("rate deactivated", "rate_id", r.ID)
	return r, nil
}

func (s *Service) GetRate(ctx context.Context, id string) (*models.ShippingRate, error) {
	return s.repo.GetRate(ctx, id)
}

func (s *Service) ListRates(ctx context.Context, f models.RateFilter) ([]*models.ShippingRate, error) {
	return s.repo.ListRates(ctx, f)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
