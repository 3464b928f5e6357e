package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LumberEventInput is the payload for creating a lumber arrival or shipment.
type LumberEventInput struct {
	Date          time.Time `json:"date"`
	SpeciesID     string    `json:"species_id" binding:"required"`
	GradeID       string    `json:"grade_id" binding:"required"`
	DimensionID   string    `json:"dimension_id" binding:"required"`
	ConditionID   string    `json:"condition_id" binding:"required"`
	Amount        int64     `json:"amount" binding:"required"`
	CounterpartID string    `json:"counterpart_id"`
	Transport     string    `json:"transport"`
}

// Key returns the stock key the event maps to.
func (in LumberEventInput) Key() LumberKey {
	return LumberKey{
		SpeciesID:   in.SpeciesID,
		GradeID:     in.GradeID,
		DimensionID: in.DimensionID,
		ConditionID: in.ConditionID,
	}
}

// LogEventInput is the payload for creating a log arrival or shipment.
// Either Volume is set directly (balance logs) or Diameter, Pieces and
// PieceVolume together describe sized sawlogs.
type LogEventInput struct {
	Date          time.Time       `json:"date"`
	SpeciesID     string          `json:"species_id" binding:"required"`
	Length        float64         `json:"length" binding:"required"`
	Diameter      int             `json:"diameter"`
	Pieces        int64           `json:"pieces"`
	PieceVolume   decimal.Decimal `json:"piece_volume"`
	Volume        decimal.Decimal `json:"volume"`
	CounterpartID string          `json:"counterpart_id"`
	Transport     string          `json:"transport"`
}

// DryingLoadInput is the payload for loading a drying chamber.
type DryingLoadInput struct {
	SpeciesID   string    `json:"species_id" binding:"required"`
	GradeID     string    `json:"grade_id" binding:"required"`
	DimensionID string    `json:"dimension_id" binding:"required"`
	Amount      int64     `json:"amount" binding:"required"`
	Date        time.Time `json:"date"`
}

// ThroughputInput is the payload for recording sawn workshop output. The
// optional log fields debit raw-log stock consumed by the sawing run.
type ThroughputInput struct {
	WorkshopID       string          `json:"workshop_id" binding:"required"`
	SpeciesID        string          `json:"species_id" binding:"required"`
	GradeID          string          `json:"grade_id" binding:"required"`
	DimensionID      string          `json:"dimension_id" binding:"required"`
	Amount           int64           `json:"amount" binding:"required"`
	Date             time.Time       `json:"date"`
	LogDesignationID string          `json:"log_designation_id"`
	LogVolume        decimal.Decimal `json:"log_volume"`
}
