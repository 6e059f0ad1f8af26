package services

import (
	"aquagrid/internal/models"
)

const daysPerYear = 365.0

// yearTotals accumulates annual volume (million gallons) per utility per year.
type yearTotals map[string]map[int]float64

func (t yearTotals) add(utilityID string, year int, volume float64) {
	years, ok := t[utilityID]
	if !ok {
		years = make(map[int]float64)
		t[utilityID] = years
	}
	years[year] += volume
}

// latest returns the most recent year and its summed volume.
func latest(years map[int]float64) (int, float64) {
	first := true
	var year int
	for y := range years {
		if first || y > year {
			year, first = y, false
		}
	}
	return year, years[year]
}

// BuildBaselines matches usage records to utility service areas and derives one baseline per
// utility that received any records. Public-supply rows are preferred; a utility with none
// falls back to the sum over all use categories. The most recent year is representative.
// The second return value counts records that fell outside every utility.
func BuildBaselines(utilities []models.UtilityRegion, records []models.UsageRecord) (map[string]models.UtilityBaseline, int) {
	baselines := make(map[string]models.UtilityBaseline)
	if len(utilities) == 0 {
		return baselines, 0
	}

	publicSupply := make(yearTotals)
	allCategories := make(yearTotals)
	unmatched := 0

	for _, rec := range records {
		if rec.Year < MinLedgerYear || rec.AnnualVolumeMillionGallons <= 0 {
			continue
		}
		utility, ok := Resolve(utilities, rec.Point)
		if !ok {
			unmatched++
			continue
		}
		allCategories.add(utility.ID, rec.Year, rec.AnnualVolumeMillionGallons)
		if rec.UseCategory == PublicSupplyCategory {
			publicSupply.add(utility.ID, rec.Year, rec.AnnualVolumeMillionGallons)
		}
	}

	for _, utility := range utilities {
		basis := models.BasisPublicSupply
		years := publicSupply[utility.ID]
		if len(years) == 0 {
			basis = models.BasisAllCategories
			years = allCategories[utility.ID]
		}
		if len(years) == 0 {
			continue
		}

		year, volume := latest(years)
		baselines[utility.ID] = models.UtilityBaseline{
			UtilityID:          utility.ID,
			TotalWithdrawalGPD: volume * 1_000_000 / daysPerYear,
			SourceYear:         year,
			Basis:              basis,
		}
	}
	return baselines, unmatched
}
