package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository/memory"
)

type fakeSheets struct {
	rows [][]interface{}
	err  error
}

func (f *fakeSheets) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, values)
	return nil
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	sheets *fakeSheets

	wet models.Condition
	dry models.Condition
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()

	spruce := store.PutSpecies(models.WoodSpecies{Name: "Spruce"})
	pine := store.PutSpecies(models.WoodSpecies{Name: "Pine"})
	first := store.PutGrade(models.LumberGrade{Name: "First"})
	// 0.045 cubic meters a piece.
	dim := store.PutDimension(models.Dimension{Width: 50, Thickness: 150, Length: 6})
	wet := store.PutCondition(models.Condition{Name: models.ConditionWet})
	dry := store.PutCondition(models.Condition{Name: models.ConditionDry})

	seed := []models.LumberStock{
		{LumberKey: models.LumberKey{SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: wet.ID}, Amount: 100},
		{LumberKey: models.LumberKey{SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: dry.ID}, Amount: 40},
		{LumberKey: models.LumberKey{SpeciesID: pine.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: wet.ID}, Amount: 10},
	}
	for i := range seed {
		if err := store.SaveLumberStock(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seed lumber stock: %v", err)
		}
	}
	if err := store.SaveLogStock(context.Background(), &models.LogStock{
		DesignationID: "des-1", Volume: decimal.RequireFromString("12.5"),
	}); err != nil {
		t.Fatalf("seed log stock: %v", err)
	}

	sheets := &fakeSheets{}
	svc := NewService(store, store, store, store, sheets, nil)

	now := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, store: store, sheets: sheets, wet: wet, dry: dry, now: now}
}

func TestListLumberByCondition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.svc.ListLumberByCondition(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all records = %d, want 3", len(all))
	}

	wet, err := f.svc.ListLumberByCondition(ctx, models.ConditionWet)
	if err != nil {
		t.Fatalf("list wet: %v", err)
	}
	if len(wet) != 2 {
		t.Errorf("wet records = %d, want 2", len(wet))
	}
}

func TestOverallStats(t *testing.T) {
	f := newFixture(t)

	stats, err := f.svc.OverallStats(context.Background())
	if err != nil {
		t.Fatalf("OverallStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stat groups = %d, want 2", len(stats))
	}

	// Sorted by species then grade: Pine before Spruce.
	if stats[0].SpeciesName != "Pine" || stats[0].Amount != 10 {
		t.Errorf("first group = %s/%d, want Pine/10", stats[0].SpeciesName, stats[0].Amount)
	}
	if stats[1].SpeciesName != "Spruce" || stats[1].Amount != 140 {
		t.Errorf("second group = %s/%d, want Spruce/140", stats[1].SpeciesName, stats[1].Amount)
	}
	// Spruce: wet and dry conditions combine, 140 pieces of 0.045.
	if want := decimal.RequireFromString("6.3"); !stats[1].Volume.Equal(want) {
		t.Errorf("spruce volume = %s, want %s", stats[1].Volume, want)
	}
}

func TestGenerateDailyReport(t *testing.T) {
	f := newFixture(t)

	report, summary, err := f.svc.GenerateDailyReport(context.Background(), f.now)
	if err != nil {
		t.Fatalf("GenerateDailyReport: %v", err)
	}

	if report.WetLumberPieces != 110 || report.DryLumberPieces != 40 {
		t.Errorf("pieces = wet %d dry %d, want wet 110 dry 40", report.WetLumberPieces, report.DryLumberPieces)
	}
	if want := decimal.RequireFromString("4.95"); !report.WetLumberVolume.Equal(want) {
		t.Errorf("wet volume = %s, want %s", report.WetLumberVolume, want)
	}
	if want := decimal.RequireFromString("1.8"); !report.DryLumberVolume.Equal(want) {
		t.Errorf("dry volume = %s, want %s", report.DryLumberVolume, want)
	}
	if want := decimal.RequireFromString("12.5"); !report.LogVolume.Equal(want) {
		t.Errorf("log volume = %s, want %s", report.LogVolume, want)
	}
	if summary == "" {
		t.Error("summary is empty")
	}

	if archived := f.store.Reports(); len(archived) != 1 {
		t.Errorf("archived reports = %d, want 1", len(archived))
	}
	if len(f.sheets.rows) != 1 {
		t.Errorf("exported rows = %d, want 1", len(f.sheets.rows))
	}
}

func TestGenerateDailyReportSurvivesExportFailure(t *testing.T) {
	f := newFixture(t)
	f.sheets.err = errors.New("sheets unavailable")

	if _, _, err := f.svc.GenerateDailyReport(context.Background(), f.now); err != nil {
		t.Fatalf("GenerateDailyReport: %v", err)
	}
	if archived := f.store.Reports(); len(archived) != 1 {
		t.Errorf("archived reports = %d, want 1", len(archived))
	}
}
