package handlers

import (
	"net/http"

	"aquagrid/internal/services"
)

// LayerHandler serves the boundary and data-center layers exactly as they were loaded.
type LayerHandler struct {
	ds *services.Dataset
}

func NewLayerHandler(ds *services.Dataset) *LayerHandler {
	return &LayerHandler{ds: ds}
}

// GET /api/counties
func (h *LayerHandler) GetCounties(w http.ResponseWriter, r *http.Request) {
	writeRawJSON(w, http.StatusOK, h.ds.CountiesGeoJSON)
}

// GET /api/utilities
func (h *LayerHandler) GetUtilities(w http.ResponseWriter, r *http.Request) {
	writeRawJSON(w, http.StatusOK, h.ds.UtilitiesGeoJSON)
}

// GET /api/data-centers
func (h *LayerHandler) GetDataCenters(w http.ResponseWriter, r *http.Request) {
	writeRawJSON(w, http.StatusOK, h.ds.DataCentersGeoJSON)
}
