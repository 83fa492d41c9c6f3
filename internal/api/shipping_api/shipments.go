package shipping_api

import (
	"net/http"

	"github.com/BearBump/ShipBox/internal/services/shipping"
	"github.com/go-chi/chi/v5"
)

func (a *ShippingAPI) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var in shipping.CreateShipmentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sh, err := a.svc.CreateShipment(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/shipping/shipments/"+sh.ID)
	writeJSON(w, r, http.StatusCreated, sh)
}

func (a *ShippingAPI) GetShipment(w http.ResponseWriter, r *http.Request) {
	sh, err := a.svc.GetShipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sh)
}

func (a *ShippingAPI) ListOrderShipments(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.ListShipmentsByOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (a *ShippingAPI) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	var in shipping.TrackingUpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sh, err := a.svc.UpdateTracking(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sh)
}

type bulkTrackingRequest struct {
	Updates []shipping.BulkTrackingItem `json:"updates"`
}

// BulkUpdateTracking answers 200 even when some items failed; see the failed list.
func (a *ShippingAPI) BulkUpdateTracking(w http.ResponseWriter, r *http.Request) {
	var req bulkTrackingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.svc.BulkUpdateTracking(r.Context(), req.Updates)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (a *ShippingAPI) GetTracking(w http.ResponseWriter, r *http.Request) {
	v, err := a.svc.GetTracking(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}
