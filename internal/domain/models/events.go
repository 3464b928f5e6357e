package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day truncates a timestamp to day granularity in UTC. All same-day merge
// matching across event logs uses this truncation.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// LumberEvent is one day-level physical movement of sawn lumber, stored in
// either the arrivals or the shipments collection. CounterpartID holds the
// supplier for arrivals and the buyer for shipments; it is empty on shadow
// events posted by drying and workshop operations.
type LumberEvent struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Date          time.Time `bson:"date" json:"date"`
	LumberKey     `bson:",inline" json:"key"`
	Amount        int64  `bson:"amount" json:"amount"`
	CounterpartID string `bson:"counterpart_id,omitempty" json:"counterpart_id,omitempty"`
	Transport     string `bson:"transport,omitempty" json:"transport,omitempty"`
}

// LogEvent is one day-level physical movement of raw logs, keyed by the
// resolved designation. Pieces and Diameter are zero for balance (pulpwood)
// events recorded by direct volume.
type LogEvent struct {
	ID            string          `bson:"_id,omitempty" json:"id"`
	Date          time.Time       `bson:"date" json:"date"`
	DesignationID string          `bson:"designation_id" json:"designation_id"`
	Volume        decimal.Decimal `bson:"-" json:"volume"`
	Pieces        int64           `bson:"pieces,omitempty" json:"pieces,omitempty"`
	Diameter      int             `bson:"diameter,omitempty" json:"diameter,omitempty"`
	Length        float64         `bson:"length,omitempty" json:"length,omitempty"`
	CounterpartID string          `bson:"counterpart_id,omitempty" json:"counterpart_id,omitempty"`
	Transport     string          `bson:"transport,omitempty" json:"transport,omitempty"`
}

// LumberRangeResult is the response of a lumber event range query.
type LumberRangeResult struct {
	Events []LumberEvent `json:"events"`
	Total  int64         `json:"total"`
}

// LogRangeResult is the response of a log event range query. Total is
// rounded to the volume scale.
type LogRangeResult struct {
	Events []LogEvent      `json:"events"`
	Total  decimal.Decimal `json:"total"`
}
