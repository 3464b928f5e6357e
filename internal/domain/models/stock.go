package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LumberKey identifies one sawn-lumber stock aggregate.
type LumberKey struct {
	SpeciesID   string `bson:"species_id" json:"species_id"`
	GradeID     string `bson:"grade_id" json:"grade_id"`
	DimensionID string `bson:"dimension_id" json:"dimension_id"`
	ConditionID string `bson:"condition_id" json:"condition_id"`
}

// String renders the key in a stable form usable for per-key locking.
func (k LumberKey) String() string {
	return fmt.Sprintf("lumber/%s/%s/%s/%s", k.SpeciesID, k.GradeID, k.DimensionID, k.ConditionID)
}

// LumberStock is one keyed aggregate of sawn boards, counted in pieces.
type LumberStock struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	LumberKey `bson:",inline" json:"key"`
	Amount    int64 `bson:"amount" json:"amount"`
}

// LogStock is one keyed aggregate of raw logs, measured in cubic meters.
type LogStock struct {
	ID            string          `bson:"_id,omitempty" json:"id"`
	DesignationID string          `bson:"designation_id" json:"designation_id"`
	Volume        decimal.Decimal `bson:"-" json:"volume"`
}

// SpeciesGradeStat is one row of the overall warehouse statistic: lumber
// aggregated by species and grade with volume = unit volume x piece count.
type SpeciesGradeStat struct {
	SpeciesID   string          `json:"species_id"`
	SpeciesName string          `json:"species_name"`
	GradeID     string          `json:"grade_id"`
	GradeName   string          `json:"grade_name"`
	Amount      int64           `json:"amount"`
	Volume      decimal.Decimal `json:"volume"`
}
