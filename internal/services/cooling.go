package services

import (
	"fmt"

	"aquagrid/internal/models"
)

// Cooling profiles disagree only on air cooling: the standard table charges a nominal
// 1,000 gallons/day per MW, the waterless profile treats air cooling as consuming none.
const (
	CoolingProfileStandard     = "standard"
	CoolingProfileWaterlessAir = "waterless_air"
)

// CoolingTable maps a cooling technology to gallons per day per MW.
type CoolingTable map[models.CoolingType]float64

func NewCoolingTable(profile string) (CoolingTable, error) {
	switch profile {
	case CoolingProfileStandard, "":
		return CoolingTable{
			models.CoolingAirCooled:   1000,
			models.CoolingHybrid:      2500,
			models.CoolingEvaporative: 5000,
		}, nil
	case CoolingProfileWaterlessAir:
		return CoolingTable{
			models.CoolingAirCooled:   0,
			models.CoolingHybrid:      2500,
			models.CoolingEvaporative: 5000,
		}, nil
	default:
		return nil, fmt.Errorf("unknown cooling profile %q (want %q or %q)",
			profile, CoolingProfileStandard, CoolingProfileWaterlessAir)
	}
}

// DailyWaterGPD converts a power draw into gallons per day for the given cooling type.
func (t CoolingTable) DailyWaterGPD(mw float64, ct models.CoolingType) (float64, bool) {
	multiplier, ok := t[ct]
	if !ok {
		return 0, false
	}
	return mw * multiplier, true
}
