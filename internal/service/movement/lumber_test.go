package movement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository/memory"
	"github.com/woodtrack/sawmill/internal/service/stock"
)

type lumberFixture struct {
	svc    *LumberService
	ledger *stock.Ledger
	store  *memory.Store

	key      models.LumberKey
	supplier models.Supplier
	buyer    models.Buyer
	now      time.Time
}

func newLumberFixture(t *testing.T) *lumberFixture {
	t.Helper()
	store := memory.New()

	spruce := store.PutSpecies(models.WoodSpecies{Name: "Spruce"})
	first := store.PutGrade(models.LumberGrade{Name: "First"})
	dim := store.PutDimension(models.Dimension{Width: 150, Thickness: 150, Length: 6})
	wet := store.PutCondition(models.Condition{Name: models.ConditionWet})
	store.PutCondition(models.Condition{Name: models.ConditionDry})
	supplier := store.PutSupplier(models.Supplier{Name: "Northern Logging"})
	buyer := store.PutBuyer(models.Buyer{Name: "BuildCo"})

	ledger := stock.NewLedger(store, store, nil)
	svc := NewLumberService(store, ledger, store.LumberArrivals(), store.LumberShipments(), store, nil)

	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &lumberFixture{
		svc:    svc,
		ledger: ledger,
		store:  store,
		key: models.LumberKey{
			SpeciesID: spruce.ID, GradeID: first.ID, DimensionID: dim.ID, ConditionID: wet.ID,
		},
		supplier: supplier,
		buyer:    buyer,
		now:      now,
	}
}

func (f *lumberFixture) input(amount int64) models.LumberEventInput {
	return models.LumberEventInput{
		SpeciesID:     f.key.SpeciesID,
		GradeID:       f.key.GradeID,
		DimensionID:   f.key.DimensionID,
		ConditionID:   f.key.ConditionID,
		Amount:        amount,
		CounterpartID: f.supplier.ID,
	}
}

func (f *lumberFixture) stockAmount(t *testing.T) int64 {
	t.Helper()
	got, err := f.ledger.LumberAmount(context.Background(), f.key)
	if err != nil {
		t.Fatalf("LumberAmount: %v", err)
	}
	return got
}

func TestCreateArrivalAddsStock(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	ev, err := f.svc.CreateArrival(ctx, f.input(120))
	if err != nil {
		t.Fatalf("CreateArrival: %v", err)
	}
	if ev.Amount != 120 {
		t.Errorf("event amount = %d, want 120", ev.Amount)
	}
	if got := f.stockAmount(t); got != 120 {
		t.Errorf("stock = %d, want 120", got)
	}
}

func TestCreateArrivalSameDayMerge(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateArrival(ctx, f.input(50))
	if err != nil {
		t.Fatalf("first arrival: %v", err)
	}
	second, err := f.svc.CreateArrival(ctx, f.input(30))
	if err != nil {
		t.Fatalf("second arrival: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("same-day arrival created new event %s, want merge into %s", second.ID, first.ID)
	}
	if second.Amount != 80 {
		t.Errorf("merged amount = %d, want 80", second.Amount)
	}
	if got := f.stockAmount(t); got != 80 {
		t.Errorf("stock = %d, want 80", got)
	}

	result, err := f.svc.ArrivalDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ArrivalDayStats: %v", err)
	}
	if len(result.Events) != 1 || result.Total != 80 {
		t.Errorf("day stats = %d events total %d, want 1 event total 80", len(result.Events), result.Total)
	}
}

func TestCreateArrivalDifferentSupplierDoesNotMerge(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()
	other := f.store.PutSupplier(models.Supplier{Name: "Southern Logging"})

	if _, err := f.svc.CreateArrival(ctx, f.input(50)); err != nil {
		t.Fatalf("first arrival: %v", err)
	}
	in := f.input(30)
	in.CounterpartID = other.ID
	if _, err := f.svc.CreateArrival(ctx, in); err != nil {
		t.Fatalf("second arrival: %v", err)
	}

	result, err := f.svc.ArrivalDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ArrivalDayStats: %v", err)
	}
	if len(result.Events) != 2 || result.Total != 80 {
		t.Errorf("day stats = %d events total %d, want 2 events total 80", len(result.Events), result.Total)
	}
}

func TestCreateShipmentInsufficientStock(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateArrival(ctx, f.input(10)); err != nil {
		t.Fatalf("seed arrival: %v", err)
	}

	out := f.input(11)
	out.CounterpartID = f.buyer.ID
	_, err := f.svc.CreateShipment(ctx, out)
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("overshipment: got %v, want ErrInsufficientStock", err)
	}

	// The rejected shipment must leave no event behind.
	result, err := f.svc.ShipmentDayStats(ctx, f.now)
	if err != nil {
		t.Fatalf("ShipmentDayStats: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("rejected shipment left %d events", len(result.Events))
	}
	if got := f.stockAmount(t); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

func TestDeleteArrivalRemovesStockRecord(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	ev, err := f.svc.CreateArrival(ctx, f.input(25))
	if err != nil {
		t.Fatalf("CreateArrival: %v", err)
	}
	if err := f.svc.DeleteArrival(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteArrival: %v", err)
	}

	if got := f.stockAmount(t); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
	if _, err := f.store.FindLumberStock(ctx, f.key); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("emptied stock record should be deleted, find returned %v", err)
	}
}

func TestDeleteArrivalBlockedByConsumedStock(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	ev, err := f.svc.CreateArrival(ctx, f.input(20))
	if err != nil {
		t.Fatalf("CreateArrival: %v", err)
	}
	out := f.input(15)
	out.CounterpartID = f.buyer.ID
	if _, err := f.svc.CreateShipment(ctx, out); err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}

	// Only 5 pieces remain; retracting the 20-piece arrival must fail and
	// leave both the event and the stock untouched.
	err = f.svc.DeleteArrival(ctx, ev.ID)
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("DeleteArrival: got %v, want ErrInsufficientStock", err)
	}
	if got := f.stockAmount(t); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if _, err := f.store.LumberArrivals().LumberEventByID(ctx, ev.ID); err != nil {
		t.Errorf("arrival should survive the failed delete: %v", err)
	}
}

func TestEditShipmentIncreaseSubtractsMore(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateArrival(ctx, f.input(22)); err != nil {
		t.Fatalf("seed arrival: %v", err)
	}
	out := f.input(10)
	out.CounterpartID = f.buyer.ID
	ship, err := f.svc.CreateShipment(ctx, out)
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}

	// 12 pieces remain. Growing the shipment to 15 subtracts 3 more.
	if _, err := f.svc.EditShipment(ctx, ship.ID, 15); err != nil {
		t.Fatalf("EditShipment: %v", err)
	}
	if got := f.stockAmount(t); got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}

	// Growing it past the remaining stock fails and reports what is left.
	_, err = f.svc.EditShipment(ctx, ship.ID, 30)
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("oversized edit: got %v, want ErrInsufficientStock", err)
	}
	var detail *errs.InsufficientStock
	if errors.As(err, &detail) && !detail.Current.Equal(decimal.NewFromInt(7)) {
		t.Errorf("insufficiency reports current %s, want 7", detail.Current)
	}

	ev, err := f.store.LumberShipments().LumberEventByID(ctx, ship.ID)
	if err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	if ev.Amount != 15 {
		t.Errorf("shipment amount after failed edit = %d, want 15", ev.Amount)
	}
}

func TestEditShipmentDecreaseAddsStockBack(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateArrival(ctx, f.input(22)); err != nil {
		t.Fatalf("seed arrival: %v", err)
	}
	out := f.input(10)
	out.CounterpartID = f.buyer.ID
	ship, err := f.svc.CreateShipment(ctx, out)
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}

	// Shrinking a shipment returns the difference to the warehouse.
	if _, err := f.svc.EditShipment(ctx, ship.ID, 4); err != nil {
		t.Fatalf("EditShipment: %v", err)
	}
	if got := f.stockAmount(t); got != 18 {
		t.Errorf("stock = %d, want 18", got)
	}
}

func TestArrivalValidation(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	in := f.input(0)
	if _, err := f.svc.CreateArrival(ctx, in); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("zero amount: got %v, want ErrInvalidInput", err)
	}

	in = f.input(5)
	in.SpeciesID = "missing"
	if _, err := f.svc.CreateArrival(ctx, in); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown species: got %v, want ErrNotFound", err)
	}

	// An arrival counterpart must be a supplier, not a buyer.
	in = f.input(5)
	in.CounterpartID = f.buyer.ID
	if _, err := f.svc.CreateArrival(ctx, in); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("buyer as arrival counterpart: got %v, want ErrNotFound", err)
	}
}

func TestArrivalsBetweenRangeRules(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateArrival(ctx, f.input(7)); err != nil {
		t.Fatalf("seed arrival: %v", err)
	}

	// No bounds selects today.
	result, err := f.svc.ArrivalsBetween(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ArrivalsBetween(nil, nil): %v", err)
	}
	if result.Total != 7 {
		t.Errorf("default range total = %d, want 7", result.Total)
	}

	// A single bound selects that one day.
	yesterday := f.now.AddDate(0, 0, -1)
	result, err = f.svc.ArrivalsBetween(ctx, &yesterday, nil)
	if err != nil {
		t.Fatalf("ArrivalsBetween(yesterday, nil): %v", err)
	}
	if result.Total != 0 {
		t.Errorf("yesterday total = %d, want 0", result.Total)
	}

	// Inverted and oversized windows are rejected.
	start := f.now
	end := f.now.AddDate(0, 0, -2)
	if _, err := f.svc.ArrivalsBetween(ctx, &start, &end); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("inverted range: got %v, want ErrInvalidInput", err)
	}
	end = f.now.AddDate(0, 0, 31)
	if _, err := f.svc.ArrivalsBetween(ctx, &start, &end); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("32 day range: got %v, want ErrInvalidInput", err)
	}
	end = f.now.AddDate(0, 0, 30)
	if _, err := f.svc.ArrivalsBetween(ctx, &start, &end); err != nil {
		t.Errorf("31 day range: %v", err)
	}
}

func TestCreateArrivalBatchPartialFailure(t *testing.T) {
	f := newLumberFixture(t)
	ctx := context.Background()

	bad := f.input(5)
	bad.GradeID = "missing"
	created, failures := f.svc.CreateArrivalBatch(ctx, []models.LumberEventInput{
		f.input(10), bad, f.input(20),
	})

	if len(created) != 2 {
		t.Errorf("created reports %d committed items, want 2", len(created))
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", failures)
	}
	if got := f.stockAmount(t); got != 30 {
		t.Errorf("stock = %d, want 30", got)
	}
}
