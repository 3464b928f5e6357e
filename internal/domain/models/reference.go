package models

import (
	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/quantity"
)

// Fixed condition names the reconciliation engine depends on. Their records
// must exist in reference data before any drying or workshop operation runs.
const (
	ConditionWet = "wet"
	ConditionDry = "dry"
)

// PulpwoodMaxDiameter is the inclusive diameter threshold (cm) below which a
// log is tracked as pulpwood (balance) rather than sawlog.
const PulpwoodMaxDiameter = 14

// WoodSpecies is a tree species reference record.
type WoodSpecies struct {
	ID   string `bson:"_id,omitempty" json:"id"`
	Name string `bson:"name" json:"name"`
}

// LumberGrade is a sawn-lumber quality grade.
type LumberGrade struct {
	ID   string `bson:"_id,omitempty" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Condition is a lumber condition (wet or dry).
type Condition struct {
	ID   string `bson:"_id,omitempty" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Dimension describes a board cross-section and length, e.g. 150x150x6.
// Width and Thickness are millimeters, Length is meters.
type Dimension struct {
	ID        string  `bson:"_id,omitempty" json:"id"`
	Width     float64 `bson:"width" json:"width"`
	Thickness float64 `bson:"thickness" json:"thickness"`
	Length    float64 `bson:"length" json:"length"`
}

// UnitVolume returns the volume of a single piece in cubic meters.
func (d Dimension) UnitVolume() decimal.Decimal {
	v := d.Width / 1000 * d.Thickness / 1000 * d.Length
	return quantity.FromFloat(v)
}

// Supplier delivers raw logs.
type Supplier struct {
	ID   string `bson:"_id,omitempty" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Buyer receives shipped lumber or logs.
type Buyer struct {
	ID   string `bson:"_id,omitempty" json:"id"`
	Name string `bson:"name" json:"name"`
}

// WorkshopPrice is the sale price per cubic meter a workshop earns for one
// grade/dimension combination.
type WorkshopPrice struct {
	GradeID     string          `bson:"grade_id" json:"grade_id"`
	DimensionID string          `bson:"dimension_id" json:"dimension_id"`
	Price       decimal.Decimal `bson:"-" json:"price"`
}

// Workshop is a sawing workshop with its configured price list.
type Workshop struct {
	ID     string          `bson:"_id,omitempty" json:"id"`
	Name   string          `bson:"name" json:"name"`
	Prices []WorkshopPrice `bson:"prices" json:"prices"`
}

// PriceFor returns the configured price entry for a grade/dimension pair.
func (w Workshop) PriceFor(gradeID, dimensionID string) (WorkshopPrice, bool) {
	for _, p := range w.Prices {
		if p.GradeID == gradeID && p.DimensionID == dimensionID {
			return p, true
		}
	}
	return WorkshopPrice{}, false
}

// DryerChamber is a drying chamber. Iteration counts completed load cycles
// and is stamped onto each batch at load time.
type DryerChamber struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	Name      string `bson:"name" json:"name"`
	Iteration int    `bson:"iteration" json:"iteration"`
}

// Designation is the canonical "wood naming" code identifying a log category
// by species, length and diameter band. It is the stock key for raw logs.
type Designation struct {
	ID          string  `bson:"_id,omitempty" json:"id"`
	Name        string  `bson:"name" json:"name"`
	SpeciesID   string  `bson:"species_id" json:"species_id"`
	Length      float64 `bson:"length" json:"length"`
	MinDiameter int     `bson:"min_diameter" json:"min_diameter"`
	MaxDiameter int     `bson:"max_diameter" json:"max_diameter"`
}

// Matches reports whether a log with the given diameter falls into this
// designation's band. Diameters at or below the pulpwood threshold only
// check the upper bound, so diameter 14 always lands in the pulpwood band.
func (d Designation) Matches(diameter int) bool {
	if diameter <= PulpwoodMaxDiameter {
		return d.MaxDiameter >= diameter && d.MinDiameter <= PulpwoodMaxDiameter
	}
	return d.MinDiameter <= diameter && diameter <= d.MaxDiameter
}
