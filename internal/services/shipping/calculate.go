package shipping

import (
	"context"

	"github.com/BearBump/ShipBox/internal/apperr"
	"github.com/BearBump/ShipBox/internal/models"
	"github.com/BearBump/ShipBox/internal/pricing"
	"github.com/pkg/errors"
)

// CalculateOptions returns ranked shipping options for a package. No options is not an error.
func (s *Service) CalculateOptions(ctx context.Context, req models.CalculateRequest) ([]models.ShippingOption, error) {
	if req.Weight <= 0 {
		return nil, errors.Wrap(apperr.ErrInvalid, "weight must be greater than 0")
	}
	if req.Value < 0 {
		return nil, errors.Wrap(apperr.ErrInvalid, "value must not be negative")
	}
	if req.ToPincode == "" {
		return nil, errors.Wrap(apperr.ErrInvalid, "toPincode is required")
	}
	if req.ServiceType != "" && !models.IsKnownServiceType(req.ServiceType) {
		return nil, errors.Wrapf(apperr.ErrInvalid, "unknown serviceType %q", req.ServiceType)
	}

	providers, err := s.repo.ListProviders(ctx, true)
	if err != nil {
		return nil, err
	}
	rates, err := s.repo.ListRates(ctx, models.RateFilter{ProviderID: req.ProviderID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	return pricing.Options(pricing.Catalog{Providers: providers, Rates: rates}, req, s.now()), nil
}
