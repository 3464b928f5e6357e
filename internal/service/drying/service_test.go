package drying

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository/memory"
	"github.com/woodtrack/sawmill/internal/service/movement"
	"github.com/woodtrack/sawmill/internal/service/stock"
)

type fixture struct {
	svc    *Service
	lumber *movement.LumberService
	ledger *stock.Ledger
	store  *memory.Store

	chamber models.DryerChamber
	wetKey  models.LumberKey
	dryKey  models.LumberKey
	input   models.DryingLoadInput
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()

	spruce := store.PutSpecies(models.WoodSpecies{Name: "Spruce"})
	first := store.PutGrade(models.LumberGrade{Name: "First"})
	dim := store.PutDimension(models.Dimension{Width: 50, Thickness: 150, Length: 6})
	wet := store.PutCondition(models.Condition{Name: models.ConditionWet})
	dry := store.PutCondition(models.Condition{Name: models.ConditionDry})
	chamber := store.PutChamber(models.DryerChamber{Name: "Chamber 1"})

	ledger := stock.NewLedger(store, store, nil)
	lumber := movement.NewLumberService(store, ledger, store.LumberArrivals(), store.LumberShipments(), store, nil)
	svc := NewService(store, store, store, lumber, store, nil)

	now := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:     svc,
		lumber:  lumber,
		ledger:  ledger,
		store:   store,
		chamber: chamber,
		wetKey: models.LumberKey{
			SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: wet.ID,
		},
		dryKey: models.LumberKey{
			SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: dry.ID,
		},
		input: models.DryingLoadInput{
			SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, Amount: 500,
		},
		now: now,
	}
}

func (f *fixture) seedWetStock(t *testing.T, amount int64) {
	t.Helper()
	err := f.ledger.AdjustLumber(context.Background(), f.wetKey, amount, stock.Add, "wet lumber")
	if err != nil {
		t.Fatalf("seed wet stock: %v", err)
	}
}

func (f *fixture) amount(t *testing.T, key models.LumberKey) int64 {
	t.Helper()
	got, err := f.ledger.LumberAmount(context.Background(), key)
	if err != nil {
		t.Fatalf("LumberAmount: %v", err)
	}
	return got
}

func TestLoadMovesWetStockIntoChamber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedWetStock(t, 600)

	batch, err := f.svc.Load(ctx, f.chamber.ID, f.input)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !batch.IsDrying || batch.IsTakenOut {
		t.Errorf("batch state = drying:%v takenOut:%v, want drying:true takenOut:false", batch.IsDrying, batch.IsTakenOut)
	}
	if batch.ChamberIteration != 1 {
		t.Errorf("iteration = %d, want 1", batch.ChamberIteration)
	}
	if got := f.amount(t, f.wetKey); got != 100 {
		t.Errorf("wet stock = %d, want 100", got)
	}

	// The removal is visible as a shipment event.
	result, err := f.lumber.ShipmentDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ShipmentDayStats: %v", err)
	}
	if result.Total != 500 {
		t.Errorf("shipment total = %d, want 500", result.Total)
	}
}

func TestLoadOccupiedChamberConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedWetStock(t, 2000)

	if _, err := f.svc.Load(ctx, f.chamber.ID, f.input); err != nil {
		t.Fatalf("first load: %v", err)
	}
	_, err := f.svc.Load(ctx, f.chamber.ID, f.input)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("second load: got %v, want ErrConflict", err)
	}

	// The rejected load must not consume stock or bump the iteration.
	if got := f.amount(t, f.wetKey); got != 1500 {
		t.Errorf("wet stock = %d, want 1500", got)
	}
	chamber, err := f.store.ChamberByID(ctx, f.chamber.ID)
	if err != nil {
		t.Fatalf("reload chamber: %v", err)
	}
	if chamber.Iteration != 1 {
		t.Errorf("iteration = %d, want 1", chamber.Iteration)
	}
}

func TestLoadInsufficientWetStockAbortsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedWetStock(t, 499)

	_, err := f.svc.Load(ctx, f.chamber.ID, f.input)
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("Load: got %v, want ErrInsufficientStock", err)
	}

	// Nothing from the failed load may remain: no batch, no shipment event.
	batches, err := f.svc.ActiveByChamber(ctx, f.chamber.ID)
	if err != nil {
		t.Fatalf("ActiveByChamber: %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("failed load left %d active batches", len(batches))
	}
	result, err := f.lumber.ShipmentDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ShipmentDayStats: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("failed load left %d shipment events", len(result.Events))
	}
	if got := f.amount(t, f.wetKey); got != 499 {
		t.Errorf("wet stock = %d, want 499", got)
	}
}

func TestUnloadReturnsDryLumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedWetStock(t, 500)

	if _, err := f.svc.Load(ctx, f.chamber.ID, f.input); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A same-day dry arrival exists already; the unload merges into it.
	if err := f.store.WithinTx(ctx, func(ctx context.Context) error {
		return f.lumber.ShadowArrival(ctx, f.dryKey, 80, f.now)
	}); err != nil {
		t.Fatalf("seed dry arrival: %v", err)
	}

	batch, err := f.svc.Unload(ctx, f.chamber.ID)
	if err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if batch.IsDrying || !batch.IsTakenOut {
		t.Errorf("batch state = drying:%v takenOut:%v, want drying:false takenOut:true", batch.IsDrying, batch.IsTakenOut)
	}

	if got := f.amount(t, f.wetKey); got != 0 {
		t.Errorf("wet stock = %d, want 0", got)
	}
	if got := f.amount(t, f.dryKey); got != 580 {
		t.Errorf("dry stock = %d, want 580", got)
	}

	result, err := f.lumber.ArrivalDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ArrivalDayStats: %v", err)
	}
	if len(result.Events) != 1 || result.Total != 580 {
		t.Errorf("dry arrivals = %d events total %d, want 1 event total 580", len(result.Events), result.Total)
	}

	// The chamber is idle again and can take the next batch.
	f.seedWetStock(t, 500)
	next, err := f.svc.Load(ctx, f.chamber.ID, f.input)
	if err != nil {
		t.Fatalf("reload chamber: %v", err)
	}
	if next.ChamberIteration != 2 {
		t.Errorf("second iteration = %d, want 2", next.ChamberIteration)
	}
}

func TestUnloadIdleChamber(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Unload(context.Background(), f.chamber.ID)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Unload idle chamber: got %v, want ErrNotFound", err)
	}
}

func TestEraseRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedWetStock(t, 500)

	batch, err := f.svc.Load(ctx, f.chamber.ID, f.input)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := f.svc.Erase(ctx, batch.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("erase active batch: got %v, want ErrConflict", err)
	}

	if _, err := f.svc.Unload(ctx, f.chamber.ID); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if err := f.svc.Erase(ctx, batch.ID); err != nil {
		t.Fatalf("erase unloaded batch: %v", err)
	}
	if err := f.svc.Erase(ctx, batch.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("erase twice: got %v, want ErrNotFound", err)
	}
}
