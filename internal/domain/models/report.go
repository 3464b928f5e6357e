package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport represents the aggregated daily warehouse snapshot archived in
// MongoDB and exported to the reporting spreadsheet.
type DailyReport struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	Date            time.Time       `bson:"date" json:"date"`
	WetLumberPieces int64           `bson:"wet_lumber_pieces" json:"wet_lumber_pieces"`
	DryLumberPieces int64           `bson:"dry_lumber_pieces" json:"dry_lumber_pieces"`
	WetLumberVolume decimal.Decimal `bson:"-" json:"wet_lumber_volume"`
	DryLumberVolume decimal.Decimal `bson:"-" json:"dry_lumber_volume"`
	LogVolume       decimal.Decimal `bson:"-" json:"log_volume"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
}
