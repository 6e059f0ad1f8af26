package handlers

import (
	"net/http"
	"time"

	"aquagrid/internal/services"
)

type HealthHandler struct {
	ds             *services.Dataset
	coolingProfile string
}

func NewHealthHandler(ds *services.Dataset, coolingProfile string) *HealthHandler {
	return &HealthHandler{ds: ds, coolingProfile: coolingProfile}
}

type readiness struct {
	Status         string    `json:"status"`
	LoadedAt       time.Time `json:"loaded_at"`
	Counties       int       `json:"counties"`
	Utilities      int       `json:"utilities"`
	Baselines      int       `json:"baselines"`
	CoolingProfile string    `json:"cooling_profile"`
}

// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /readyz reports what the loaded dataset can answer. The server only starts listening
// once the county layer has loaded, so a nil dataset means a wiring bug.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ds == nil || len(h.ds.Counties) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, readiness{Status: "unavailable", CoolingProfile: h.coolingProfile})
		return
	}
	writeJSON(w, http.StatusOK, readiness{
		Status:         "ready",
		LoadedAt:       h.ds.LoadedAt,
		Counties:       len(h.ds.Counties),
		Utilities:      len(h.ds.Utilities),
		Baselines:      len(h.ds.Baselines),
		CoolingProfile: h.coolingProfile,
	})
}
