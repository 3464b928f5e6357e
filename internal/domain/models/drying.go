package models

import "time"

// DryingBatch is one chamber load. A chamber has at most one batch with
// IsDrying=true; unloaded batches are retained as history.
type DryingBatch struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	ChamberID        string    `bson:"chamber_id" json:"chamber_id"`
	SpeciesID        string    `bson:"species_id" json:"species_id"`
	GradeID          string    `bson:"grade_id" json:"grade_id"`
	DimensionID      string    `bson:"dimension_id" json:"dimension_id"`
	Amount           int64     `bson:"amount" json:"amount"`
	IsDrying         bool      `bson:"is_drying" json:"is_drying"`
	IsTakenOut       bool      `bson:"is_taken_out" json:"is_taken_out"`
	ChamberIteration int       `bson:"chamber_iteration" json:"chamber_iteration"`
	LoadedAt         time.Time `bson:"loaded_at" json:"loaded_at"`
	UnloadedAt       time.Time `bson:"unloaded_at,omitempty" json:"unloaded_at,omitempty"`
}
