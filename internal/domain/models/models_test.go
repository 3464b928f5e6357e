package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDay(t *testing.T) {
	in := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := Day(in); !got.Equal(want) {
		t.Errorf("Day(%v) = %v, want %v", in, got, want)
	}

	// Non-UTC timestamps truncate on the UTC day.
	loc := time.FixedZone("UTC+3", 3*3600)
	in = time.Date(2026, 3, 11, 1, 30, 0, 0, loc)
	if got := Day(in); !got.Equal(want) {
		t.Errorf("Day(%v) = %v, want %v", in, got, want)
	}
}

func TestDesignationMatches(t *testing.T) {
	pulpwood := Designation{MinDiameter: 6, MaxDiameter: 14}
	sawlog := Designation{MinDiameter: 15, MaxDiameter: 24}

	tests := []struct {
		name     string
		d        Designation
		diameter int
		want     bool
	}{
		{"pulpwood takes threshold diameter", pulpwood, 14, true},
		{"pulpwood takes small diameter", pulpwood, 6, true},
		{"sawlog never takes threshold diameter", sawlog, 14, false},
		{"sawlog takes lower bound", sawlog, 15, true},
		{"sawlog takes upper bound", sawlog, 24, true},
		{"sawlog rejects above band", sawlog, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Matches(tt.diameter); got != tt.want {
				t.Errorf("Matches(%d) = %v, want %v", tt.diameter, got, tt.want)
			}
		})
	}
}

func TestDimensionUnitVolume(t *testing.T) {
	d := Dimension{Width: 50, Thickness: 150, Length: 6}
	if want := decimal.RequireFromString("0.045"); !d.UnitVolume().Equal(want) {
		t.Errorf("UnitVolume = %s, want %s", d.UnitVolume(), want)
	}
}

func TestWorkshopPriceFor(t *testing.T) {
	w := Workshop{Prices: []WorkshopPrice{
		{GradeID: "g1", DimensionID: "d1", Price: decimal.NewFromInt(200)},
	}}
	if _, ok := w.PriceFor("g1", "d1"); !ok {
		t.Error("configured pair not found")
	}
	if _, ok := w.PriceFor("g1", "d2"); ok {
		t.Error("unconfigured pair reported as priced")
	}
}
