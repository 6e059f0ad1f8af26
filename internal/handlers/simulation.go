package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aquagrid/internal/models"
	"aquagrid/internal/services"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxSimulationBody = 64 << 10

// Simulator runs one simulation against the loaded dataset.
type Simulator interface {
	Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error)
}

type SimulationHandler struct {
	service Simulator
	logr    *zap.Logger
}

func NewSimulationHandler(svc Simulator, logr *zap.Logger) *SimulationHandler {
	return &SimulationHandler{service: svc, logr: logr}
}

// simulateBody uses pointers so absent fields can be told apart from zeros.
type simulateBody struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	MW          *float64 `json:"mw"`
	CoolingType *string  `json:"cooling_type"`
}

func (b simulateBody) missing() []string {
	var fields []string
	if b.Lat == nil {
		fields = append(fields, "lat")
	}
	if b.Lng == nil {
		fields = append(fields, "lng")
	}
	if b.MW == nil {
		fields = append(fields, "mw")
	}
	if b.CoolingType == nil {
		fields = append(fields, "cooling_type")
	}
	return fields
}

// POST /api/simulate
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSimulationBody)

	dec := json.NewDecoder(r.Body)
	var body simulateBody
	if err := dec.Decode(&body); err != nil {
		var (
			typeErr *json.UnmarshalTypeError
			sizeErr *http.MaxBytesError
		)
		if errors.As(err, &sizeErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		if errors.As(err, &typeErr) {
			writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s: wrong type", typeErr.Field))
			return
		}
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body: unexpected data after object")
		return
	}
	if missing := body.missing(); len(missing) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "missing fields: "+strings.Join(missing, ", "))
		return
	}

	req := models.SimulationRequest{
		Lat:         *body.Lat,
		Lng:         *body.Lng,
		MW:          *body.MW,
		CoolingType: models.CoolingType(*body.CoolingType),
	}

	result, err := h.service.Simulate(r.Context(), req)
	if err != nil {
		h.writeSimulationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *SimulationHandler) writeSimulationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeDetail(w, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": "))
	case errors.Is(err, services.ErrOutOfCoverage):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDataUnavailable):
		writeDetail(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logr.Warn("simulation abandoned", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeDetail(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logr.Error("simulation failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "simulation failed")
	}
}
