package models

import "github.com/paulmach/orb"

// UsageRecord is one accepted row of the historical water-use ledger.
type UsageRecord struct {
	Year                       int
	AnnualVolumeMillionGallons float64
	UseCategory                string
	Point                      orb.Point // lon/lat; point of use, else point of diversion
}

type BaselineBasis string

const (
	BasisPublicSupply  BaselineBasis = "public_supply"
	BasisAllCategories BaselineBasis = "all_categories"
)

// UtilityBaseline is the representative daily withdrawal derived for one utility.
type UtilityBaseline struct {
	UtilityID          string        `json:"utility_id"`
	TotalWithdrawalGPD float64       `json:"total_withdrawal_gpd"`
	SourceYear         int           `json:"source_year"`
	Basis              BaselineBasis `json:"basis"`
}
