package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"aquagrid/internal/metrics"
	"aquagrid/internal/models"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput    = errors.New("invalid simulation input")
	ErrOutOfCoverage   = errors.New("simulation only supported in Northern Virginia; click within Loudoun, Fairfax, or Prince William County")
	ErrDataUnavailable = errors.New("county water withdrawal data unavailable")
)

// Accepted request ranges. The coordinate box is a continental sanity check, not the
// coverage area; coverage is decided by the county layer.
const (
	minLat, maxLat = 30.0, 45.0
	minLng, maxLng = -85.0, -70.0
)

const strainPrecision = 1e4

type SimulationService struct {
	ds      *Dataset
	cooling CoolingTable
	metrics *metrics.Metrics
	logr    *zap.Logger
	newID   func() string
}

func NewSimulationService(ds *Dataset, cooling CoolingTable, m *metrics.Metrics, logr *zap.Logger) *SimulationService {
	return &SimulationService{
		ds:      ds,
		cooling: cooling,
		metrics: m,
		logr:    logr,
		newID:   uuid.NewString,
	}
}

// ValidateRequest checks shape and ranges before any geometry is consulted.
func ValidateRequest(req models.SimulationRequest) error {
	switch {
	case math.IsNaN(req.Lat) || req.Lat < minLat || req.Lat > maxLat:
		return fmt.Errorf("%w: lat must be between %v and %v", ErrInvalidInput, minLat, maxLat)
	case math.IsNaN(req.Lng) || req.Lng < minLng || req.Lng > maxLng:
		return fmt.Errorf("%w: lng must be between %v and %v", ErrInvalidInput, minLng, maxLng)
	case math.IsNaN(req.MW) || math.IsInf(req.MW, 0) || req.MW <= 0:
		return fmt.Errorf("%w: mw must be greater than 0", ErrInvalidInput)
	case !req.CoolingType.Valid():
		return fmt.Errorf("%w: cooling_type must be one of %v", ErrInvalidInput, models.CoolingTypes)
	}
	return nil
}

// Simulate estimates the daily water demand of a proposed load and expresses it as a share of
// the most specific baseline available at the point. The result is all or nothing.
func (s *SimulationService) Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateRequest(req); err != nil {
		s.metrics.SimulationErrors.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	pt := orb.Point{req.Lng, req.Lat}

	county, ok := Resolve(s.ds.Counties, pt)
	if !ok {
		s.metrics.SimulationErrors.WithLabelValues("out_of_coverage").Inc()
		return nil, ErrOutOfCoverage
	}
	if county.TotalWithdrawalGPD == 0 {
		s.metrics.SimulationErrors.WithLabelValues("data_unavailable").Inc()
		s.logr.Error("county has no withdrawal baseline", zap.String("county_id", county.ID))
		return nil, ErrDataUnavailable
	}

	dailyWater, ok := s.cooling.DailyWaterGPD(req.MW, req.CoolingType)
	if !ok {
		return nil, fmt.Errorf("%w: no multiplier for cooling_type %q", ErrInvalidInput, req.CoolingType)
	}
	if math.IsInf(dailyWater, 0) || math.IsNaN(dailyWater) {
		s.metrics.SimulationErrors.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("%w: mw too large", ErrInvalidInput)
	}

	result := &models.SimulationResult{
		SimulationID:       s.newID(),
		County:             county.Name,
		CountyID:           county.ID,
		ModelMode:          models.ModeCountyOnly,
		BaselineScope:      models.BaselineScopeCounty,
		MW:                 req.MW,
		CoolingType:        req.CoolingType,
		DailyWaterGPD:      dailyWater,
		TotalWithdrawalGPD: county.TotalWithdrawalGPD,
	}

	// Utility matching is independent of the county match; near county lines the two may differ.
	if len(s.ds.Utilities) > 0 {
		if utility, ok := Resolve(s.ds.Utilities, pt); ok {
			result.UtilityID = &utility.ID
			result.UtilityName = &utility.Name
			result.BoundaryQuality = &utility.BoundaryQuality
			result.ModelMode = models.ModeUtilityLocationCountyFallback

			if baseline, ok := s.ds.Baselines[utility.ID]; ok && baseline.TotalWithdrawalGPD > 0 {
				year := baseline.SourceYear
				result.ModelMode = models.ModeUtilityBaseline
				result.BaselineScope = "utility_" + string(baseline.Basis)
				result.BaselineSourceYear = &year
				result.TotalWithdrawalGPD = baseline.TotalWithdrawalGPD
			}
		}
	}

	if result.TotalWithdrawalGPD == 0 {
		s.metrics.SimulationErrors.WithLabelValues("data_unavailable").Inc()
		return nil, ErrDataUnavailable
	}

	strain := roundStrain(dailyWater / result.TotalWithdrawalGPD * 100)
	if math.IsInf(strain, 0) || math.IsNaN(strain) {
		s.metrics.SimulationErrors.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("%w: mw too large", ErrInvalidInput)
	}
	result.StrainPercent = strain
	result.StrainLevel = ClassifyStrain(result.StrainPercent)

	s.metrics.Simulations.WithLabelValues(string(result.ModelMode)).Inc()
	s.metrics.StrainPercent.Observe(result.StrainPercent)
	s.logr.Debug("simulation complete",
		zap.String("simulation_id", result.SimulationID),
		zap.String("county_id", result.CountyID),
		zap.String("model_mode", string(result.ModelMode)),
		zap.Float64("daily_water_gpd", result.DailyWaterGPD),
		zap.Float64("strain_percent", result.StrainPercent),
	)
	return result, nil
}

// roundStrain rounds to four decimals, halves away from zero.
func roundStrain(v float64) float64 {
	return math.Round(v*strainPrecision) / strainPrecision
}

// ClassifyStrain buckets a strain percentage: below 1 is low, up to 3 is moderate.
func ClassifyStrain(pct float64) models.StrainLevel {
	switch {
	case pct < 1:
		return models.StrainLow
	case pct <= 3:
		return models.StrainModerate
	default:
		return models.StrainHigh
	}
}
