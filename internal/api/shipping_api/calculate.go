package shipping_api

import (
	"net/http"

	"github.com/BearBump/ShipBox/internal/models"
)

type calculateResponse struct {
	Options []models.ShippingOption `json:"options"`
	Count   int                     `json:"count"`
}

// Calculate handles POST /shipping/calculate.
func (a *ShippingAPI) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	opts, err := a.svc.CalculateOptions(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, calculateResponse{Options: opts, Count: len(opts)})
}
