package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	chamber := store.PutChamber(models.DryerChamber{Name: "K1", Iteration: 3})
	key := models.LumberKey{SpeciesID: "sp", GradeID: "g", DimensionID: "d", ConditionID: "wet"}
	if err := store.SaveLumberStock(ctx, &models.LumberStock{LumberKey: key, Amount: 40}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	arrivals := store.LumberArrivals()
	kept := &models.LumberEvent{Date: now, LumberKey: key, Amount: 40}
	if err := arrivals.InsertLumberEvent(ctx, kept); err != nil {
		t.Fatalf("seed arrival: %v", err)
	}

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		chamber.Iteration++
		if err := store.SaveChamber(ctx, &chamber); err != nil {
			return err
		}
		if err := store.InsertDryingBatch(ctx, &models.DryingBatch{
			ChamberID: chamber.ID, SpeciesID: key.SpeciesID, GradeID: key.GradeID,
			DimensionID: key.DimensionID, Amount: 40, IsDrying: true,
		}); err != nil {
			return err
		}
		if err := arrivals.InsertLumberEvent(ctx, &models.LumberEvent{Date: now, LumberKey: key, Amount: 7}); err != nil {
			return err
		}
		rec, err := store.FindLumberStock(ctx, key)
		if err != nil {
			return err
		}
		if err := store.DeleteLumberStock(ctx, rec.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx: got %v, want the fn error", err)
	}

	got, err := store.ChamberByID(ctx, chamber.ID)
	if err != nil {
		t.Fatalf("ChamberByID: %v", err)
	}
	if got.Iteration != 3 {
		t.Errorf("chamber iteration = %d, want 3", got.Iteration)
	}
	if _, err := store.ActiveDryingBatchByChamber(ctx, chamber.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("rolled-back batch still active: %v", err)
	}
	rec, err := store.FindLumberStock(ctx, key)
	if err != nil {
		t.Fatalf("FindLumberStock: %v", err)
	}
	if rec.Amount != 40 {
		t.Errorf("stock = %d, want 40", rec.Amount)
	}

	// The stream view handed out before the transaction reads the restored map.
	events, err := arrivals.ListLumberEventsBetween(ctx, now, now)
	if err != nil {
		t.Fatalf("ListLumberEventsBetween: %v", err)
	}
	if len(events) != 1 || events[0].Amount != 40 {
		t.Errorf("events after rollback = %+v, want the single seeded arrival", events)
	}
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	store := New()
	ctx := context.Background()
	key := models.LumberKey{SpeciesID: "sp", GradeID: "g", DimensionID: "d", ConditionID: "wet"}

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		return store.SaveLumberStock(ctx, &models.LumberStock{LumberKey: key, Amount: 12})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	rec, err := store.FindLumberStock(ctx, key)
	if err != nil {
		t.Fatalf("FindLumberStock: %v", err)
	}
	if rec.Amount != 12 {
		t.Errorf("stock = %d, want 12", rec.Amount)
	}
}
