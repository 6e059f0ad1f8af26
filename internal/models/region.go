package models

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Boundary is a lon/lat polygon or multipolygon with its planar area precomputed.
// Area is in squared degrees and only meaningful for ranking regions against each other.
type Boundary struct {
	Geometry orb.Geometry `json:"-"`
	Bound    orb.Bound    `json:"-"`
	Area     float64      `json:"-"`
}

func NewBoundary(g orb.Geometry) Boundary {
	return Boundary{
		Geometry: g,
		Bound:    g.Bound(),
		Area:     math.Abs(planar.Area(g)),
	}
}

// Contains reports whether pt lies inside the boundary. Points on an outer ring count as inside.
func (b Boundary) Contains(pt orb.Point) bool {
	if b.Geometry == nil || !b.Bound.Contains(pt) {
		return false
	}
	switch g := b.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	default:
		return false
	}
}

// CountyRegion is a county boundary with its curated total water withdrawal.
type CountyRegion struct {
	ID                 string  `json:"county_id"`
	Name               string  `json:"name"`
	TotalWithdrawalGPD float64 `json:"total_withdrawal_gpd"` // 0 means unavailable
	Boundary
}

// UtilityRegion is a water utility service area.
type UtilityRegion struct {
	ID              string `json:"utility_id"`
	Name            string `json:"utility_name"`
	BoundaryQuality string `json:"boundary_quality"`
	Boundary
}
