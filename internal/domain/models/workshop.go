package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkshopThroughput records sawn output per workshop, day, grade and
// dimension. Same-day output for one key merges into a single row.
type WorkshopThroughput struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	WorkshopID  string    `bson:"workshop_id" json:"workshop_id"`
	Date        time.Time `bson:"date" json:"date"`
	SpeciesID   string    `bson:"species_id" json:"species_id"`
	GradeID     string    `bson:"grade_id" json:"grade_id"`
	DimensionID string    `bson:"dimension_id" json:"dimension_id"`
	Amount      int64     `bson:"amount" json:"amount"`
	// Raw-log consumption debited when the output was recorded, credited
	// back when the record is deleted.
	LogDesignationID string          `bson:"log_designation_id,omitempty" json:"log_designation_id,omitempty"`
	LogVolume        decimal.Decimal `bson:"-" json:"log_volume"`
}

// ThroughputStat is one aggregated row of workshop output statistics.
type ThroughputStat struct {
	Date        time.Time       `json:"date"`
	WorkshopID  string          `json:"workshop_id"`
	GradeID     string          `json:"grade_id"`
	DimensionID string          `json:"dimension_id"`
	Amount      int64           `json:"amount"`
	Volume      decimal.Decimal `json:"volume"`
}

// ProfitEntry reports one day of workshop profitability. ProfitPerCubicMeter
// is zero when the day produced no volume.
type ProfitEntry struct {
	Date                time.Time       `json:"date"`
	Volume              decimal.Decimal `json:"volume"`
	Revenue             decimal.Decimal `json:"revenue"`
	Cost                decimal.Decimal `json:"cost"`
	Profit              decimal.Decimal `json:"profit"`
	ProfitPerCubicMeter decimal.Decimal `json:"profit_per_cubic_meter"`
}
