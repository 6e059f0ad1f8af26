package services

import "github.com/paulmach/orb"

// Locatable is a region that can answer point containment.
type Locatable interface {
	Contains(pt orb.Point) bool
}

// Resolve returns the first region in layer that contains pt. Layers are sorted by ascending
// area at load time, so the first hit is the most specific region when polygons overlap.
//
// This is a linear scan; layers hold tens of regions. If they grow into the hundreds, put an
// R-tree or grid behind this same signature.
func Resolve[T Locatable](layer []T, pt orb.Point) (T, bool) {
	for _, region := range layer {
		if region.Contains(pt) {
			return region, true
		}
	}
	var none T
	return none, false
}
