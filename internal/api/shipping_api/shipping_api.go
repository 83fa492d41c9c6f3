// Package shipping_api is the REST surface of the shipping service.
package shipping_api

import (
	"context"
	"net/http"
	"time"

	"github.com/BearBump/ShipBox/internal/services/shipping"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RateLimiter interface {
	AllowPerMinute(ctx context.Context, scope string, limit int64, now time.Time) (bool, int64, error)
}

type ShippingAPI struct {
	svc *shipping.Service

	rl             RateLimiter
	calcPerMinute  int64
	requestTimeout time.Duration
}

func New(svc *shipping.Service) *ShippingAPI {
	return &ShippingAPI{svc: svc, requestTimeout: 10 * time.Second}
}

// WithCalculateRateLimit limits POST /shipping/calculate per client IP. A nil limiter or a
// non-positive limit disables it.
func (a *ShippingAPI) WithCalculateRateLimit(rl RateLimiter, perMinute int64) *ShippingAPI {
	a.rl = rl
	a.calcPerMinute = perMinute
	return a
}

func (a *ShippingAPI) WithRequestTimeout(d time.Duration) *ShippingAPI {
	if d > 0 {
		a.requestTimeout = d
	}
	return a
}

// Routes builds the router with the base middleware stack. Extra routes (docs) can be added
// by the caller on the returned router.
func (a *ShippingAPI) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.requestTimeout))

	r.Get("/healthz", a.Healthz)

	r.Route("/shipping", func(r chi.Router) {
		r.With(a.calculateLimit).Post("/calculate", a.Calculate)

		r.Post("/shipments", a.CreateShipment)
		r.Post("/shipments/tracking/bulk", a.BulkUpdateTracking)
		r.Get("/shipments/{id}", a.GetShipment)
		r.Patch("/shipments/{id}/tracking", a.UpdateTracking)
		r.Get("/orders/{orderId}/shipments", a.ListOrderShipments)
		r.Get("/tracking/{trackingNumber}", a.GetTracking)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/providers", a.ListProviders)
			r.Post("/providers", a.CreateProvider)
			r.Get("/providers/{id}", a.GetProvider)
			r.Put("/providers/{id}", a.UpdateProvider)
			r.Delete("/providers/{id}", a.DeactivateProvider)

			r.Get("/rates", a.ListRates)
			r.Post("/rates", a.CreateRate)
			r.Get("/rates/{id}", a.GetRate)
			r.Put("/rates/{id}", a.UpdateRate)
			r.Delete("/rates/{id}", a.DeactivateRate)
		})
	})

	return r
}

func (a *ShippingAPI) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
