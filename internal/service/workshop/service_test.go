package workshop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository/memory"
	"github.com/woodtrack/sawmill/internal/service/designation"
	"github.com/woodtrack/sawmill/internal/service/movement"
	"github.com/woodtrack/sawmill/internal/service/stock"
)

type fixture struct {
	svc    *Service
	lumber *movement.LumberService
	logs   *movement.LogService
	ledger *stock.Ledger
	store  *memory.Store

	workshop models.Workshop
	sawlog   models.Designation
	wetKey   models.LumberKey
	input    models.ThroughputInput
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()

	spruce := store.PutSpecies(models.WoodSpecies{Name: "Spruce"})
	first := store.PutGrade(models.LumberGrade{Name: "First"})
	// 50x150x6 board: 0.045 cubic meters a piece.
	dim := store.PutDimension(models.Dimension{Width: 50, Thickness: 150, Length: 6})
	wet := store.PutCondition(models.Condition{Name: models.ConditionWet})
	store.PutCondition(models.Condition{Name: models.ConditionDry})
	sawlog := store.PutDesignation(models.Designation{
		Name: "SP-6.0-A", SpeciesID: spruce.ID, Length: 6.0, MinDiameter: 15, MaxDiameter: 40,
	})
	ws := store.PutWorkshop(models.Workshop{
		Name: "Line A",
		Prices: []models.WorkshopPrice{
			{GradeID: first.ID, DimensionID: dim.ID, Price: decimal.RequireFromString("200")},
		},
	})

	ledger := stock.NewLedger(store, store, nil)
	resolver := designation.NewResolver(store, nil)
	lumber := movement.NewLumberService(store, ledger, store.LumberArrivals(), store.LumberShipments(), store, nil)
	logs := movement.NewLogService(store, resolver, store, ledger, store.LogArrivals(), store.LogShipments(), store, nil)

	costs := Costs{
		RawMaterialPerCubicMeter: decimal.RequireFromString("60"),
		SawingPerCubicMeter:      decimal.RequireFromString("40"),
	}
	svc := NewService(store, store, lumber, logs, store, costs, nil)

	now := time.Date(2026, 3, 16, 11, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:      svc,
		lumber:   lumber,
		logs:     logs,
		ledger:   ledger,
		store:    store,
		workshop: ws,
		sawlog:   sawlog,
		wetKey: models.LumberKey{
			SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: wet.ID,
		},
		input: models.ThroughputInput{
			WorkshopID:  ws.ID,
			SpeciesID:   spruce.ID,
			GradeID:     first.ID,
			DimensionID: dim.ID,
			Amount:      100,
		},
		now: now,
	}
}

func (f *fixture) wetAmount(t *testing.T) int64 {
	t.Helper()
	got, err := f.ledger.LumberAmount(context.Background(), f.wetKey)
	if err != nil {
		t.Fatalf("LumberAmount: %v", err)
	}
	return got
}

func (f *fixture) seedLogStock(t *testing.T, volume string) {
	t.Helper()
	err := f.ledger.AdjustLogVolume(context.Background(), f.sawlog.ID, decimal.RequireFromString(volume), stock.Add, f.sawlog.Name)
	if err != nil {
		t.Fatalf("seed log stock: %v", err)
	}
}

func TestRecordOutputMirrorsWetArrival(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.RecordOutput(ctx, f.input)
	if err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}
	if rec.Amount != 100 {
		t.Errorf("amount = %d, want 100", rec.Amount)
	}

	if got := f.wetAmount(t); got != 100 {
		t.Errorf("wet stock = %d, want 100", got)
	}
	result, err := f.lumber.ArrivalDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ArrivalDayStats: %v", err)
	}
	if len(result.Events) != 1 || result.Total != 100 {
		t.Errorf("mirrored arrivals = %d events total %d, want 1 event total 100", len(result.Events), result.Total)
	}
}

func TestRecordOutputSameDayMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.RecordOutput(ctx, f.input)
	if err != nil {
		t.Fatalf("first output: %v", err)
	}
	in := f.input
	in.Amount = 40
	second, err := f.svc.RecordOutput(ctx, in)
	if err != nil {
		t.Fatalf("second output: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("same-day output created new row %s, want merge into %s", second.ID, first.ID)
	}
	if second.Amount != 140 {
		t.Errorf("merged amount = %d, want 140", second.Amount)
	}
	if got := f.wetAmount(t); got != 140 {
		t.Errorf("wet stock = %d, want 140", got)
	}
}

func TestRecordOutputConsumesLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLogStock(t, "20")

	in := f.input
	in.LogDesignationID = f.sawlog.ID
	in.LogVolume = decimal.RequireFromString("7.5")
	if _, err := f.svc.RecordOutput(ctx, in); err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}

	got, err := f.ledger.LogVolume(ctx, f.sawlog.ID)
	if err != nil {
		t.Fatalf("LogVolume: %v", err)
	}
	if want := decimal.RequireFromString("12.5"); !got.Equal(want) {
		t.Errorf("log stock = %s, want %s", got, want)
	}
}

func TestRecordOutputInsufficientLogsAborts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLogStock(t, "5")

	in := f.input
	in.LogDesignationID = f.sawlog.ID
	in.LogVolume = decimal.RequireFromString("7.5")
	_, err := f.svc.RecordOutput(ctx, in)
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("RecordOutput: got %v, want ErrInsufficientStock", err)
	}

	// The whole run rolls back: no throughput row, no wet mirror.
	if got := f.wetAmount(t); got != 0 {
		t.Errorf("wet stock = %d, want 0", got)
	}
	rows, err := f.store.ListThroughputBetween(ctx, f.workshop.ID, f.now, f.now)
	if err != nil {
		t.Fatalf("ListThroughputBetween: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("failed output left %d rows", len(rows))
	}
}

func TestSameDayMergeAccumulatesLogDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLogStock(t, "20")

	in := f.input
	in.LogDesignationID = f.sawlog.ID
	in.LogVolume = decimal.RequireFromString("7.5")
	if _, err := f.svc.RecordOutput(ctx, in); err != nil {
		t.Fatalf("first output: %v", err)
	}
	rec, err := f.svc.RecordOutput(ctx, in)
	if err != nil {
		t.Fatalf("second output: %v", err)
	}

	if want := decimal.RequireFromString("15"); !rec.LogVolume.Equal(want) {
		t.Errorf("merged log volume = %s, want %s", rec.LogVolume, want)
	}
	vol, err := f.ledger.LogVolume(ctx, f.sawlog.ID)
	if err != nil {
		t.Fatalf("LogVolume: %v", err)
	}
	if want := decimal.RequireFromString("5"); !vol.Equal(want) {
		t.Errorf("log stock = %s, want %s", vol, want)
	}

	// Deleting the merged row credits back both runs' debits.
	if err := f.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	vol, err = f.ledger.LogVolume(ctx, f.sawlog.ID)
	if err != nil {
		t.Fatalf("LogVolume after delete: %v", err)
	}
	if want := decimal.RequireFromString("20"); !vol.Equal(want) {
		t.Errorf("log stock after delete = %s, want %s", vol, want)
	}
}

func TestRecordOutputRequiresPrice(t *testing.T) {
	f := newFixture(t)
	other := f.store.PutGrade(models.LumberGrade{Name: "Second"})

	in := f.input
	in.GradeID = other.ID
	_, err := f.svc.RecordOutput(context.Background(), in)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("unpriced grade: got %v, want ErrNotFound", err)
	}
}

func TestEditAdjustsMirrorAndStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.RecordOutput(ctx, f.input)
	if err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}

	if _, err := f.svc.Edit(ctx, rec.ID, 130); err != nil {
		t.Fatalf("Edit up: %v", err)
	}
	if got := f.wetAmount(t); got != 130 {
		t.Errorf("wet stock after increase = %d, want 130", got)
	}

	if _, err := f.svc.Edit(ctx, rec.ID, 90); err != nil {
		t.Fatalf("Edit down: %v", err)
	}
	if got := f.wetAmount(t); got != 90 {
		t.Errorf("wet stock after decrease = %d, want 90", got)
	}
}

func TestEditBlockedWhenMirrorConsumed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.RecordOutput(ctx, f.input)
	if err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}

	// Ship away most of the mirrored wet lumber, then try to shrink the
	// output below what the mirror can give back.
	buyer := f.store.PutBuyer(models.Buyer{Name: "BuildCo"})
	if _, err := f.lumber.CreateShipment(ctx, models.LumberEventInput{
		SpeciesID:     f.wetKey.SpeciesID,
		GradeID:       f.wetKey.GradeID,
		DimensionID:   f.wetKey.DimensionID,
		ConditionID:   f.wetKey.ConditionID,
		Amount:        95,
		CounterpartID: buyer.ID,
	}); err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}

	_, err = f.svc.Edit(ctx, rec.ID, 1)
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("Edit: got %v, want ErrInsufficientStock", err)
	}
	if got := f.wetAmount(t); got != 5 {
		t.Errorf("wet stock = %d, want 5", got)
	}
}

func TestDeleteRetractsMirrorAndRestoresLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedLogStock(t, "20")

	in := f.input
	in.LogDesignationID = f.sawlog.ID
	in.LogVolume = decimal.RequireFromString("7.5")
	rec, err := f.svc.RecordOutput(ctx, in)
	if err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}

	if err := f.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := f.wetAmount(t); got != 0 {
		t.Errorf("wet stock = %d, want 0", got)
	}
	vol, err := f.ledger.LogVolume(ctx, f.sawlog.ID)
	if err != nil {
		t.Fatalf("LogVolume: %v", err)
	}
	if want := decimal.RequireFromString("20"); !vol.Equal(want) {
		t.Errorf("log stock = %s, want %s", vol, want)
	}

	// The mirrored arrival reached zero and was removed with the row.
	result, err := f.lumber.ArrivalDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ArrivalDayStats: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("deleted output left %d arrival events", len(result.Events))
	}
}

func TestStatsAndProfit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.RecordOutput(ctx, f.input); err != nil {
		t.Fatalf("RecordOutput: %v", err)
	}

	stats, err := f.svc.DayStats(ctx, f.workshop.ID, f.now)
	if err != nil {
		t.Fatalf("DayStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats rows = %d, want 1", len(stats))
	}
	// 100 pieces of 0.045 cubic meters each.
	if want := decimal.RequireFromString("4.5"); !stats[0].Volume.Equal(want) {
		t.Errorf("stats volume = %s, want %s", stats[0].Volume, want)
	}

	entries, err := f.svc.Profit(ctx, f.workshop.ID, &f.now, &f.now)
	if err != nil {
		t.Fatalf("Profit: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("profit rows = %d, want 1", len(entries))
	}
	e := entries[0]
	// Revenue 4.5 * 200 = 900, cost 4.5 * (60 + 40) = 450.
	if want := decimal.RequireFromString("900"); !e.Revenue.Equal(want) {
		t.Errorf("revenue = %s, want %s", e.Revenue, want)
	}
	if want := decimal.RequireFromString("450"); !e.Cost.Equal(want) {
		t.Errorf("cost = %s, want %s", e.Cost, want)
	}
	if want := decimal.RequireFromString("450"); !e.Profit.Equal(want) {
		t.Errorf("profit = %s, want %s", e.Profit, want)
	}
	if want := decimal.RequireFromString("100"); !e.ProfitPerCubicMeter.Equal(want) {
		t.Errorf("profit per cubic meter = %s, want %s", e.ProfitPerCubicMeter, want)
	}
}

func TestProfitEmptyRange(t *testing.T) {
	f := newFixture(t)

	entries, err := f.svc.Profit(context.Background(), f.workshop.ID, &f.now, &f.now)
	if err != nil {
		t.Fatalf("Profit: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("profit rows = %d, want 0", len(entries))
	}
}
