package services

import (
	"strings"
	"testing"

	"aquagrid/internal/metrics"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Test geography (lon/lat boxes):
//
//	loudoun   [-78.0,-77.0]x[39.0,40.0]  32,000,000 gpd
//	fairfax   [-77.0,-76.0]x[38.0,39.0] 120,000,000 gpd
//	emptyco   [-80.0,-79.0]x[38.0,39.0]           0 gpd
//
//	lw     [-77.8,-77.4]x[39.2,39.6]  public-supply baseline
//	inner  [-77.7,-77.6]x[39.3,39.4]  nested in lw, no ledger rows
//	fw     [-76.8,-76.2]x[38.2,38.8]  all-categories baseline
//	edge   [-77.1,-76.9]x[38.5,39.5]  straddles the loudoun/fairfax line, no rows
var (
	ptLoudounOnly  = orb.Point{-77.2, 39.8}
	ptLW           = orb.Point{-77.5, 39.25}
	ptInner        = orb.Point{-77.65, 39.35}
	ptFW           = orb.Point{-76.5, 38.5}
	ptEdgeLoudoun  = orb.Point{-77.05, 39.2}
	ptEmptyCounty  = orb.Point{-79.5, 38.5}
	ptOutsideNoVA  = orb.Point{-72.0, 42.0}
	loudounGPD     = 32_000_000.0
	lwBaselineGPD  = 10_000_000.0
	fwBaselineGPD  = 3_000_000.0
	lwBaselineYear = 2022
	fwBaselineYear = 2020
)

func box(minLng, minLat, maxLng, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLng, minLat}, {maxLng, minLat}, {maxLng, maxLat}, {minLng, maxLat}, {minLng, minLat},
	}}
}

func featureCollectionJSON(t *testing.T, features ...*geojson.Feature) []byte {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	b, err := fc.MarshalJSON()
	require.NoError(t, err)
	return b
}

func countyFeature(id, name string, gpd float64, g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["county_id"] = id
	f.Properties["name"] = name
	f.Properties["total_withdrawal_gpd"] = gpd
	return f
}

func utilityFeature(id, name, quality string, g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["utility_id"] = id
	if name != "" {
		f.Properties["utility_name"] = name
	}
	if quality != "" {
		f.Properties["boundary_quality"] = quality
	}
	return f
}

func testCountiesJSON(t *testing.T) []byte {
	return featureCollectionJSON(t,
		countyFeature("fairfax", "Fairfax County", 120_000_000, box(-77.0, 38.0, -76.0, 39.0)),
		countyFeature("loudoun", "Loudoun County", loudounGPD, box(-78.0, 39.0, -77.0, 40.0)),
		countyFeature("emptyco", "Empty County", 0, box(-80.0, 38.0, -79.0, 39.0)),
	)
}

func testUtilitiesJSON(t *testing.T) []byte {
	return featureCollectionJSON(t,
		utilityFeature("lw", "Loudoun Water", "official", box(-77.8, 39.2, -77.4, 39.6)),
		utilityFeature("inner", "Inner Town", "", box(-77.7, 39.3, -77.6, 39.4)),
		utilityFeature("fw", "Fairfax Water", "digitized", box(-76.8, 38.2, -76.2, 38.8)),
		utilityFeature("edge", "", "approximate", box(-77.1, 38.5, -76.9, 39.5)),
	)
}

const ledgerHeader = "Year,Annual_Volume_Million_Gallons,USGS_Use_Category_Assigned_Simplified,Latitude_POU,Longitude_POU,Latitude_POD,Longitude_POD\n"

// testLedgerCSV yields lw: public supply 2022 = 3650 MG; fw: all categories 2020 = 1095 MG.
const testLedgerCSV = ledgerHeader +
	"2021,3650,Public_Supply,39.25,-77.5,,\n" +
	"2022,1825,Public_Supply,39.25,-77.5,,\n" +
	"2022,1825,Public_Supply,,,39.25,-77.5\n" +
	"2022,9999,Industrial,39.25,-77.5,,\n" +
	"2023,500,Industrial,39.25,-77.5,,\n" +
	"2019,7300,Public_Supply,38.5,-76.5,,\n" +
	"2020,730,Industrial,38.5,-76.5,,\n" +
	"2020.0,365,Irrigation,,,38.5,-76.5\n" +
	"2022,0,Public_Supply,39.25,-77.5,,\n" +
	"2022,abc,Public_Supply,39.25,-77.5,,\n" +
	"2022,100,Public_Supply,,,,\n" +
	"2022,100,Public_Supply,39.25,,,-77.5\n" +
	"2022,100,Public_Supply,41.0,-73.0,,\n" +
	"year,100,Public_Supply,39.25,-77.5,,\n"

func nopLogger() *zap.Logger { return zap.NewNop() }

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset(testCountiesJSON(t), testUtilitiesJSON(t), nopLogger())
	require.NoError(t, err)
	records, report := ParseLedger([]byte(testLedgerCSV))
	ds.ApplyLedger(records, report)
	return ds
}

func testService(t *testing.T, ds *Dataset, profile string) *SimulationService {
	t.Helper()
	cooling, err := NewCoolingTable(profile)
	require.NoError(t, err)
	svc := NewSimulationService(ds, cooling, metrics.NewMetricsForTesting(), nopLogger())
	svc.newID = func() string { return "sim-test" }
	return svc
}

func csvLines(lines ...string) string {
	return ledgerHeader + strings.Join(lines, "\n") + "\n"
}
