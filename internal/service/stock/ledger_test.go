package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository"
	"github.com/woodtrack/sawmill/internal/repository/memory"
)

var testKey = models.LumberKey{SpeciesID: "sp", GradeID: "g1", DimensionID: "d1", ConditionID: "wet"}

func newLedger() (*Ledger, *memory.Store) {
	store := memory.New()
	return NewLedger(store, store, nil), store
}

func TestAdjustLumberSignedSum(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()

	steps := []struct {
		amount int64
		dir    Direction
	}{
		{100, Add},
		{30, Subtract},
		{5, Add},
		{25, Subtract},
	}
	for _, step := range steps {
		if err := l.AdjustLumber(ctx, testKey, step.amount, step.dir, "test lumber"); err != nil {
			t.Fatalf("adjust %s %d: %v", step.dir, step.amount, err)
		}
	}

	got, err := l.LumberAmount(ctx, testKey)
	if err != nil {
		t.Fatalf("LumberAmount: %v", err)
	}
	if got != 50 {
		t.Errorf("amount = %d, want 50", got)
	}
}

func TestAdjustLumberInsufficiency(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()

	if err := l.AdjustLumber(ctx, testKey, 10, Add, "test lumber"); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	err := l.AdjustLumber(ctx, testKey, 11, Subtract, "test lumber")
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("oversubtraction: got %v, want ErrInsufficientStock", err)
	}

	var detail *errs.InsufficientStock
	if !errors.As(err, &detail) {
		t.Fatalf("error does not carry stock details: %v", err)
	}
	if !detail.Current.Equal(decimal.NewFromInt(10)) || !detail.Requested.Equal(decimal.NewFromInt(11)) {
		t.Errorf("details = have %s requested %s, want have 10 requested 11", detail.Current, detail.Requested)
	}

	// The failed subtraction must not mutate the record.
	got, err := l.LumberAmount(ctx, testKey)
	if err != nil {
		t.Fatalf("LumberAmount: %v", err)
	}
	if got != 10 {
		t.Errorf("amount after failed subtract = %d, want 10", got)
	}
}

func TestAdjustLumberSubtractFromEmpty(t *testing.T) {
	l, _ := newLedger()

	err := l.AdjustLumber(context.Background(), testKey, 1, Subtract, "test lumber")
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("subtract with no record: got %v, want ErrInsufficientStock", err)
	}
}

func TestAdjustLumberDeleteOnZero(t *testing.T) {
	l, store := newLedger()
	ctx := context.Background()

	if err := l.AdjustLumber(ctx, testKey, 40, Add, "test lumber"); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	if err := l.AdjustLumber(ctx, testKey, 40, Subtract, "test lumber"); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	if _, err := store.FindLumberStock(ctx, testKey); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("emptied record should be deleted, find returned %v", err)
	}

	records, err := store.ListLumberStock(ctx, repository.LumberStockFilter{})
	if err != nil {
		t.Fatalf("ListLumberStock: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("stock listing has %d records, want 0", len(records))
	}
}

func TestAdjustLumberRejectsNonPositive(t *testing.T) {
	l, _ := newLedger()

	for _, amount := range []int64{0, -5} {
		err := l.AdjustLumber(context.Background(), testKey, amount, Add, "test lumber")
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("amount %d: got %v, want ErrInvalidInput", amount, err)
		}
	}
}

func TestAdjustLogVolume(t *testing.T) {
	l, store := newLedger()
	ctx := context.Background()
	des := "des-1"

	if err := l.AdjustLogVolume(ctx, des, decimal.RequireFromString("12.3456"), Add, "SP-6.0-A"); err != nil {
		t.Fatalf("add volume: %v", err)
	}
	if err := l.AdjustLogVolume(ctx, des, decimal.RequireFromString("2.3456"), Subtract, "SP-6.0-A"); err != nil {
		t.Fatalf("subtract volume: %v", err)
	}

	got, err := l.LogVolume(ctx, des)
	if err != nil {
		t.Fatalf("LogVolume: %v", err)
	}
	if want := decimal.RequireFromString("10"); !got.Equal(want) {
		t.Errorf("volume = %s, want %s", got, want)
	}

	// Draining to exactly zero removes the record.
	if err := l.AdjustLogVolume(ctx, des, decimal.RequireFromString("10"), Subtract, "SP-6.0-A"); err != nil {
		t.Fatalf("drain volume: %v", err)
	}
	if _, err := store.FindLogStock(ctx, des); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("emptied log record should be deleted, find returned %v", err)
	}
}

func TestAdjustLogVolumeInsufficiency(t *testing.T) {
	l, _ := newLedger()
	ctx := context.Background()
	des := "des-1"

	if err := l.AdjustLogVolume(ctx, des, decimal.RequireFromString("1.5"), Add, "SP-6.0-A"); err != nil {
		t.Fatalf("seed volume: %v", err)
	}

	err := l.AdjustLogVolume(ctx, des, decimal.RequireFromString("1.5001"), Subtract, "SP-6.0-A")
	if !errors.Is(err, errs.ErrInsufficientStock) {
		t.Fatalf("oversubtraction: got %v, want ErrInsufficientStock", err)
	}

	got, err := l.LogVolume(ctx, des)
	if err != nil {
		t.Fatalf("LogVolume: %v", err)
	}
	if want := decimal.RequireFromString("1.5"); !got.Equal(want) {
		t.Errorf("volume after failed subtract = %s, want %s", got, want)
	}
}

func TestDirectionInverse(t *testing.T) {
	if Add.Inverse() != Subtract || Subtract.Inverse() != Add {
		t.Fatal("Inverse must swap Add and Subtract")
	}
}
