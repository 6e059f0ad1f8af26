package services

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"aquagrid/internal/models"
	"aquagrid/internal/utils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var errNotPolygonal = errors.New("geometry must be a Polygon or MultiPolygon")

// LoadCountyLayer decodes the county FeatureCollection into regions sorted by ascending area.
// Features without a county_id, or repeating one already seen, are dropped.
func LoadCountyLayer(data []byte, logr *zap.Logger) ([]models.CountyRegion, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode county layer: %w", err)
	}

	counties := make([]models.CountyRegion, 0, len(fc.Features))
	seen := make(map[string]struct{}, len(fc.Features))

	for i, f := range fc.Features {
		id := propString(f.Properties, "county_id")
		if id == "" {
			logr.Warn("skipping county feature without county_id", zap.Int("feature", i))
			continue
		}
		if _, dup := seen[id]; dup {
			logr.Warn("skipping duplicate county feature", zap.String("county_id", id), zap.Int("feature", i))
			continue
		}

		geom, err := polygonal(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("county %q: %w", id, err)
		}

		withdrawal, ok := propFloat(f.Properties, "total_withdrawal_gpd")
		if !ok {
			return nil, fmt.Errorf("county %q: total_withdrawal_gpd is not a number", id)
		}
		if withdrawal < 0 {
			return nil, fmt.Errorf("county %q: negative total_withdrawal_gpd %v", id, withdrawal)
		}

		seen[id] = struct{}{}
		counties = append(counties, models.CountyRegion{
			ID:                 id,
			Name:               propOrDefault(f.Properties, "name", id),
			TotalWithdrawalGPD: withdrawal,
			Boundary:           models.NewBoundary(geom),
		})
	}

	sortByArea(counties, func(c models.CountyRegion) float64 { return c.Area })
	return counties, nil
}

// LoadUtilityLayer decodes the utility service-area FeatureCollection into regions sorted by
// ascending area. The layer is best effort: features with a blank or repeated utility_id, or a
// non-polygonal geometry, are skipped rather than failing the load.
func LoadUtilityLayer(data []byte, logr *zap.Logger) ([]models.UtilityRegion, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode utility layer: %w", err)
	}

	utilities := make([]models.UtilityRegion, 0, len(fc.Features))
	seen := make(map[string]struct{}, len(fc.Features))

	for i, f := range fc.Features {
		id := propString(f.Properties, "utility_id")
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			logr.Warn("skipping duplicate utility feature", zap.String("utility_id", id), zap.Int("feature", i))
			continue
		}

		geom, err := polygonal(f.Geometry)
		if err != nil {
			logr.Warn("skipping utility feature", zap.String("utility_id", id), zap.Error(err))
			continue
		}

		seen[id] = struct{}{}
		utilities = append(utilities, models.UtilityRegion{
			ID:              id,
			Name:            propOrDefault(f.Properties, "utility_name", id),
			BoundaryQuality: propOrDefault(f.Properties, "boundary_quality", "unknown"),
			Boundary:        models.NewBoundary(geom),
		})
	}

	sortByArea(utilities, func(u models.UtilityRegion) float64 { return u.Area })
	return utilities, nil
}

func polygonal(g orb.Geometry) (orb.Geometry, error) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) < 4 {
			return nil, errors.New("empty polygon")
		}
		return v, nil
	case orb.MultiPolygon:
		if len(v) == 0 {
			return nil, errors.New("empty multipolygon")
		}
		return v, nil
	case nil:
		return nil, errors.New("missing geometry")
	default:
		return nil, fmt.Errorf("%w, got %s", errNotPolygonal, v.GeoJSONType())
	}
}

// propString returns a property as trimmed text. Hand-edited layers sometimes carry
// numeric ids, so numbers are formatted rather than rejected.
func propString(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// propOrDefault returns the trimmed string property, or def when it is absent or blank.
func propOrDefault(p geojson.Properties, key, def string) string {
	if v := propString(p, key); v != "" {
		return v
	}
	return def
}

// propFloat reads a numeric property. Absent or null reads as 0; numeric strings are accepted.
func propFloat(p geojson.Properties, key string) (float64, bool) {
	switch v := p[key].(type) {
	case nil:
		return 0, true
	case float64:
		return v, true
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, true
		}
		return utils.ParseOptionalFloat(v)
	default:
		return 0, false
	}
}

// sortByArea orders a layer smallest first; ties keep file order.
func sortByArea[T any](layer []T, area func(T) float64) {
	slices.SortStableFunc(layer, func(a, b T) int {
		return cmp.Compare(area(a), area(b))
	})
}
