package shipping_api

import (
	"net/http"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/BearBump/ShipBox/internal/services/shipping"
	"github.com/go-chi/chi/v5"
)

func (a *ShippingAPI) ListProviders(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := boolQuery(r, "active", false)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	list, err := a.svc.ListProviders(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (a *ShippingAPI) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var in models.ShippingProvider
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.svc.CreateProvider(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/shipping/admin/providers/"+p.ID)
	writeJSON(w, r, http.StatusCreated, p)
}

func (a *ShippingAPI) GetProvider(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.GetProvider(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (a *ShippingAPI) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	var upd shipping.ProviderUpdate
	if !decodeUpdate(w, r, &upd.Provider, &upd.IsActive) {
		return
	}
	p, err := a.svc.UpdateProvider(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// DeactivateProvider handles DELETE: providers are soft-deleted.
func (a *ShippingAPI) DeactivateProvider(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.DeactivateProvider(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (a *ShippingAPI) ListRates(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := boolQuery(r, "active", false)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	list, err := a.svc.ListRates(r.Context(), models.RateFilter{
		ProviderID: r.URL.Query().Get("providerId"),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (a *ShippingAPI) CreateRate(w http.ResponseWriter, r *http.Request) {
	var in models.ShippingRate
	if !decodeJSON(w, r, &in) {
		return
	}
	rate, err := a.svc.CreateRate(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/shipping/admin/rates/"+rate.ID)
	writeJSON(w, r, http.StatusCreated, rate)
}

func (a *ShippingAPI) GetRate(w http.ResponseWriter, r *http.Request) {
	rate, err := a.svc.GetRate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rate)
}

func (a *ShippingAPI) UpdateRate(w http.ResponseWriter, r *http.Request) {
	var upd shipping.RateUpdate
	if !decodeUpdate(w, r, &upd.Rate, &upd.IsActive) {
		return
	}
	rate, err := a.svc.UpdateRate(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rate)
}

func (a *ShippingAPI) DeactivateRate(w http.ResponseWriter, r *http.Request) {
	rate, err := a.svc.DeactivateRate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rate)
}
