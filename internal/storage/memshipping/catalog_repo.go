package memshipping

import (
	"context"
	"sort"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) CreateProvider(ctx context.Context, p *models.ShippingProvider) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.providerCodes[p.Code]; taken {
		return errors.Wrapf(apperr.ErrInvalid, "provider code %s already exists", p.Code)
	}
	s.providers[p.ID] = cloneProvider(p)
	s.providerCodes[p.Code] = p.ID
	return nil
}

func (s *Storage) UpdateProvider(ctx context.Context, p *models.ShippingProvider) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.providers[p.ID]
	if !ok {
		return errors.Wrapf(apperr.ErrNotFound, "provider %s", p.ID)
	}
	if owner, taken := s.providerCodes[p.Code]; taken && owner != p.ID {
		return errors.Wrapf(apperr.ErrInvalid, "provider code %s already exists", p.Code)
	}
	delete(s.providerCodes, cur.Code)
	s.providers[p.ID] = cloneProvider(p)
	s.providerCodes[p.Code] = p.ID
	return nil
}

func (s *Storage) GetProvider(ctx context.Context, id string) (*models.ShippingProvider, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, errors.Wrapf(apperr.ErrNotFound, "provider %s", id)
	}
	return cloneProvider(p), nil
}

// ListProviders orders by priority (highest first), then by name.
func (s *Storage) ListProviders(ctx context.Context, activeOnly bool) ([]*models.ShippingProvider, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ShippingProvider, 0, len(s.providers))
	for _, p := range s.providers {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, cloneProvider(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Storage) CreateRate(ctx context.Context, r *models.ShippingRate) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[r.ProviderID]; !ok {
		return errors.Wrapf(apperr.ErrNotFound, "provider %s", r.ProviderID)
	}
	s.rates[r.ID] = cloneRate(r)
	return nil
}

func (s *Storage) UpdateRate(ctx context.Context, r *models.ShippingRate) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rates[r.ID]; !ok {
		return errors.Wrapf(apperr.ErrNotFound, "rate %s", r.ID)
	}
	if _, ok := s.providers[r.ProviderID]; !ok {
		return errors.Wrapf(apperr.ErrNotFound, "provider %s", r.ProviderID)
	}
	s.rates[r.ID] = cloneRate(r)
	return nil
}

func (s *Storage) GetRate(ctx context.Context, id string) (*models.ShippingRate, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rates[id]
	if !ok {
		return nil, errors.Wrapf(apperr.ErrNotFound, "rate %s", id)
	}
	return cloneRate(r), nil
}

// ListRates orders by creation time, then id.
func (s *Storage) ListRates(ctx context.Context, f models.RateFilter) ([]*models.ShippingRate, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ShippingRate, 0, len(s.rates))
	for _, r := range s.rates {
		if f.ProviderID != "" && r.ProviderID != f.ProviderID {
			continue
		}
		if f.ActiveOnly && !r.IsActive {
			continue
		}
		out = append(out, cloneRate(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
