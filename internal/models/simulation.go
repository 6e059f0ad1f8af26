package models

type CoolingType string

const (
	CoolingAirCooled   CoolingType = "air_cooled"
	CoolingHybrid      CoolingType = "hybrid"
	CoolingEvaporative CoolingType = "evaporative"
)

// CoolingTypes lists the accepted cooling technologies in display order.
var CoolingTypes = []CoolingType{CoolingAirCooled, CoolingHybrid, CoolingEvaporative}

func (c CoolingType) Valid() bool {
	for _, ct := range CoolingTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// ModelMode describes which denominator branch a simulation took.
type ModelMode string

const (
	ModeCountyOnly                    ModelMode = "county_only"
	ModeUtilityLocationCountyFallback ModelMode = "utility_location_county_fallback"
	ModeUtilityBaseline               ModelMode = "utility_baseline"
)

type StrainLevel string

const (
	StrainLow      StrainLevel = "LOW"
	StrainModerate StrainLevel = "MODERATE"
	StrainHigh     StrainLevel = "HIGH"
)

const BaselineScopeCounty = "county"

// SimulationRequest is the body of POST /api/simulate
type SimulationRequest struct {
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	MW          float64     `json:"mw"`
	CoolingType CoolingType `json:"cooling_type"`
}

// SimulationResult is the all-or-nothing outcome of one simulation.
type SimulationResult struct {
	SimulationID       string      `json:"simulation_id"`
	County             string      `json:"county"`
	CountyID           string      `json:"county_id"`
	UtilityID          *string     `json:"utility_id"`
	UtilityName        *string     `json:"utility_name"`
	BoundaryQuality    *string     `json:"boundary_quality"`
	ModelMode          ModelMode   `json:"model_mode"`
	BaselineScope      string      `json:"baseline_scope"`
	BaselineSourceYear *int        `json:"baseline_source_year"`
	MW                 float64     `json:"mw"`
	CoolingType        CoolingType `json:"cooling_type"`
	DailyWaterGPD      float64     `json:"daily_water_gpd"`
	StrainPercent      float64     `json:"strain_percent"`
	StrainLevel        StrainLevel `json:"strain_level"`
	TotalWithdrawalGPD float64     `json:"total_withdrawal_gpd"`
}
