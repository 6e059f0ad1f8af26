package services

import (
	"testing"

	"aquagrid/internal/models"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SmallestContainingPolygonWins(t *testing.T) {
	data := featureCollectionJSON(t,
		utilityFeature("outer", "Outer", "", box(-78, 39, -77, 40)),
		utilityFeature("island", "Island", "", box(-77.6, 39.4, -77.4, 39.6)),
	)
	layer, err := LoadUtilityLayer(data, nopLogger())
	require.NoError(t, err)

	got, ok := Resolve(layer, orb.Point{-77.5, 39.5})
	require.True(t, ok)
	assert.Equal(t, "island", got.ID)

	got, ok = Resolve(layer, orb.Point{-77.9, 39.1})
	require.True(t, ok)
	assert.Equal(t, "outer", got.ID)
}

func TestResolve_NoMatch(t *testing.T) {
	layer := []models.CountyRegion{
		{ID: "a", Boundary: models.NewBoundary(box(-78, 39, -77, 40))},
	}

	_, ok := Resolve(layer, orb.Point{-70, 30})
	assert.False(t, ok)

	_, ok = Resolve([]models.CountyRegion(nil), orb.Point{-77.5, 39.5})
	assert.False(t, ok)
}

func TestResolve_BoundaryIsInclusive(t *testing.T) {
	layer := []models.CountyRegion{
		{ID: "a", Boundary: models.NewBoundary(box(-78, 39, -77, 40))},
	}

	got, ok := Resolve(layer, orb.Point{-77, 39.5})
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}
