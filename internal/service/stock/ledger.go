// Package stock implements the keyed stock ledger shared by both commodity
// streams: sawn lumber counted in pieces and raw logs measured in cubic
// meters.
package stock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/domain/quantity"
	"github.com/woodtrack/sawmill/internal/repository"
)

// Direction is the sign of a ledger adjustment.
type Direction int

const (
	// Add increases the aggregate, creating the record when absent.
	Add Direction = iota
	// Subtract decreases the aggregate and fails with InsufficientStock
	// when the record would go negative.
	Subtract
)

func (d Direction) String() string {
	if d == Add {
		return "add"
	}
	return "subtract"
}

// Inverse returns the opposite direction, used when compensating a deleted
// event.
func (d Direction) Inverse() Direction {
	if d == Add {
		return Subtract
	}
	return Add
}

// Ledger applies signed quantity deltas to stock aggregates. Adjustments to
// one key are serialized through a per-key mutex on top of whatever
// transaction the caller runs in, so concurrent read-modify-write sequences
// cannot lose updates.
type Ledger struct {
	lumber repository.LumberStockStore
	logs   repository.LogStockStore
	locks  sync.Map
	logger *zap.Logger
}

// NewLedger wires a ledger over the two stock stores.
func NewLedger(lumber repository.LumberStockStore, logs repository.LogStockStore, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{lumber: lumber, logs: logs, logger: logger}
}

func (l *Ledger) lock(key string) func() {
	v, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// AdjustLumber applies a piece-count delta to the lumber aggregate for key.
// Add merges into an existing record or creates one; Subtract rejects the
// adjustment with InsufficientStock when the record is absent or too small.
// Records reaching exactly zero are deleted. subject is the human-readable
// key description carried on insufficiency errors.
func (l *Ledger) AdjustLumber(ctx context.Context, key models.LumberKey, amount int64, dir Direction, subject string) error {
	if amount <= 0 {
		return errs.Invalidf("adjustment amount must be positive, got %d", amount)
	}

	unlock := l.lock(key.String())
	defer unlock()

	rec, err := l.lumber.FindLumberStock(ctx, key)
	if err != nil && !errorsIsNotFound(err) {
		return fmt.Errorf("find lumber stock: %w", err)
	}

	if dir == Add {
		if rec == nil {
			rec = &models.LumberStock{LumberKey: key, Amount: amount}
		} else {
			rec.Amount += amount
		}
		if err := l.lumber.SaveLumberStock(ctx, rec); err != nil {
			return fmt.Errorf("save lumber stock: %w", err)
		}
		l.logger.Debug("lumber stock adjusted",
			zap.String("key", key.String()), zap.String("direction", dir.String()),
			zap.Int64("amount", amount), zap.Int64("result", rec.Amount))
		return nil
	}

	var current int64
	if rec != nil {
		current = rec.Amount
	}
	if current < amount {
		return &errs.InsufficientStock{
			Subject:   subject,
			Current:   quantity.FromPieces(current),
			Requested: quantity.FromPieces(amount),
		}
	}

	rec.Amount = current - amount
	if rec.Amount == 0 {
		if err := l.lumber.DeleteLumberStock(ctx, rec.ID); err != nil {
			return fmt.Errorf("delete emptied lumber stock: %w", err)
		}
	} else if err := l.lumber.SaveLumberStock(ctx, rec); err != nil {
		return fmt.Errorf("save lumber stock: %w", err)
	}

	l.logger.Debug("lumber stock adjusted",
		zap.String("key", key.String()), zap.String("direction", dir.String()),
		zap.Int64("amount", amount), zap.Int64("result", rec.Amount))
	return nil
}

// AdjustLogVolume applies a volume delta to the log aggregate for a
// designation, with the same create/merge, insufficiency and delete-on-zero
// semantics as AdjustLumber. Volumes are normalized to the ledger scale.
func (l *Ledger) AdjustLogVolume(ctx context.Context, designationID string, volume decimal.Decimal, dir Direction, subject string) error {
	volume = quantity.Round(volume)
	if volume.Sign() <= 0 {
		return errs.Invalidf("adjustment volume must be positive, got %s", volume)
	}

	unlock := l.lock("logs/" + designationID)
	defer unlock()

	rec, err := l.logs.FindLogStock(ctx, designationID)
	if err != nil && !errorsIsNotFound(err) {
		return fmt.Errorf("find log stock: %w", err)
	}

	if dir == Add {
		if rec == nil {
			rec = &models.LogStock{DesignationID: designationID, Volume: volume}
		} else {
			rec.Volume = quantity.Round(rec.Volume.Add(volume))
		}
		if err := l.logs.SaveLogStock(ctx, rec); err != nil {
			return fmt.Errorf("save log stock: %w", err)
		}
		l.logger.Debug("log stock adjusted",
			zap.String("designation", designationID), zap.String("direction", dir.String()),
			zap.String("volume", volume.String()), zap.String("result", rec.Volume.String()))
		return nil
	}

	current := decimal.Zero
	if rec != nil {
		current = rec.Volume
	}
	if current.LessThan(volume) {
		return &errs.InsufficientStock{Subject: subject, Current: current, Requested: volume}
	}

	rec.Volume = quantity.Round(current.Sub(volume))
	if rec.Volume.IsZero() {
		if err := l.logs.DeleteLogStock(ctx, rec.ID); err != nil {
			return fmt.Errorf("delete emptied log stock: %w", err)
		}
	} else if err := l.logs.SaveLogStock(ctx, rec); err != nil {
		return fmt.Errorf("save log stock: %w", err)
	}

	l.logger.Debug("log stock adjusted",
		zap.String("designation", designationID), zap.String("direction", dir.String()),
		zap.String("volume", volume.String()), zap.String("result", rec.Volume.String()))
	return nil
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}

// LumberAmount reads the current piece count for a key, zero when absent.
func (l *Ledger) LumberAmount(ctx context.Context, key models.LumberKey) (int64, error) {
	rec, err := l.lumber.FindLumberStock(ctx, key)
	if err != nil {
		if errorsIsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return rec.Amount, nil
}

// LogVolume reads the current volume for a designation, zero when absent.
func (l *Ledger) LogVolume(ctx context.Context, designationID string) (decimal.Decimal, error) {
	rec, err := l.logs.FindLogStock(ctx, designationID)
	if err != nil {
		if errorsIsNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return rec.Volume, nil
}
