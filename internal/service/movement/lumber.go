package movement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/domain/quantity"
	"github.com/woodtrack/sawmill/internal/repository"
	"github.com/woodtrack/sawmill/internal/service/stock"
)

// LumberService maintains the sawn-lumber arrival and shipment logs and the
// cascades into the lumber stock ledger.
type LumberService struct {
	refs      repository.ReferenceReader
	ledger    *stock.Ledger
	arrivals  repository.LumberEventStore
	shipments repository.LumberEventStore
	tx        repository.TxRunner
	logger    *zap.Logger
	now       func() time.Time
}

// NewLumberService wires the lumber movement service.
func NewLumberService(refs repository.ReferenceReader, ledger *stock.Ledger,
	arrivals, shipments repository.LumberEventStore, tx repository.TxRunner, logger *zap.Logger) *LumberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LumberService{
		refs:      refs,
		ledger:    ledger,
		arrivals:  arrivals,
		shipments: shipments,
		tx:        tx,
		logger:    logger,
		now:       time.Now,
	}
}

// describeKey renders a stock key with resolved reference names, used on
// insufficiency errors.
func (s *LumberService) describeKey(ctx context.Context, key models.LumberKey) string {
	sp, err1 := s.refs.SpeciesByID(ctx, key.SpeciesID)
	gr, err2 := s.refs.GradeByID(ctx, key.GradeID)
	dim, err3 := s.refs.DimensionByID(ctx, key.DimensionID)
	cond, err4 := s.refs.ConditionByID(ctx, key.ConditionID)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return key.String()
	}
	return fmt.Sprintf("%s %s %vx%vx%v (%s)", sp.Name, gr.Name, dim.Width, dim.Thickness, dim.Length, cond.Name)
}

func (s *LumberService) validateInput(ctx context.Context, in models.LumberEventInput, dir stock.Direction) error {
	if in.Amount <= 0 {
		return errs.Invalidf("amount must be positive, got %d", in.Amount)
	}
	if _, err := s.refs.SpeciesByID(ctx, in.SpeciesID); err != nil {
		return err
	}
	if _, err := s.refs.GradeByID(ctx, in.GradeID); err != nil {
		return err
	}
	if _, err := s.refs.DimensionByID(ctx, in.DimensionID); err != nil {
		return err
	}
	if _, err := s.refs.ConditionByID(ctx, in.ConditionID); err != nil {
		return err
	}
	if in.CounterpartID != "" {
		if dir == stock.Add {
			if _, err := s.refs.SupplierByID(ctx, in.CounterpartID); err != nil {
				return err
			}
		} else if _, err := s.refs.BuyerByID(ctx, in.CounterpartID); err != nil {
			return err
		}
	}
	return nil
}

// create adjusts stock and merges the event into its stream, all inside one
// transaction. dir is the stock effect of the event: Add for arrivals,
// Subtract for shipments.
func (s *LumberService) create(ctx context.Context, store repository.LumberEventStore, in models.LumberEventInput, dir stock.Direction) (*models.LumberEvent, error) {
	if err := s.validateInput(ctx, in, dir); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	key := in.Key()
	subject := s.describeKey(ctx, key)

	var out *models.LumberEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.AdjustLumber(ctx, key, in.Amount, dir, subject); err != nil {
			return err
		}

		existing, err := store.FindLumberEventByDayKey(ctx, models.Day(date), key, in.CounterpartID)
		switch {
		case err == nil:
			existing.Amount += in.Amount
			if err := store.UpdateLumberEventAmount(ctx, existing.ID, existing.Amount); err != nil {
				return fmt.Errorf("merge same-day event: %w", err)
			}
			out = existing
			return nil
		case errors.Is(err, errs.ErrNotFound):
			ev := &models.LumberEvent{
				Date:          date,
				LumberKey:     key,
				Amount:        in.Amount,
				CounterpartID: in.CounterpartID,
				Transport:     in.Transport,
			}
			if err := store.InsertLumberEvent(ctx, ev); err != nil {
				return fmt.Errorf("insert event: %w", err)
			}
			out = ev
			return nil
		default:
			return fmt.Errorf("find same-day event: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lumber event recorded",
		zap.String("direction", dir.String()), zap.String("key", key.String()),
		zap.Int64("amount", in.Amount), zap.String("event_id", out.ID))
	return out, nil
}

// edit re-applies the quantity delta to stock before persisting the new
// amount. A quantity increase amplifies the event's stock effect, a decrease
// reverses part of it; a shipment that shrinks therefore adds stock back.
func (s *LumberService) edit(ctx context.Context, store repository.LumberEventStore, id string, amount int64, dir stock.Direction) (*models.LumberEvent, error) {
	if amount <= 0 {
		return nil, errs.Invalidf("amount must be positive, got %d", amount)
	}

	ev, err := store.LumberEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delta := amount - ev.Amount
	if delta == 0 {
		return ev, nil
	}

	stockDir := dir
	magnitude := delta
	if delta < 0 {
		stockDir = dir.Inverse()
		magnitude = -delta
	}
	subject := s.describeKey(ctx, ev.LumberKey)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.AdjustLumber(ctx, ev.LumberKey, magnitude, stockDir, subject); err != nil {
			return err
		}
		return store.UpdateLumberEventAmount(ctx, id, amount)
	})
	if err != nil {
		return nil, err
	}

	ev.Amount = amount
	return ev, nil
}

// remove applies the inverse of the event's original stock effect, then
// deletes the event.
func (s *LumberService) remove(ctx context.Context, store repository.LumberEventStore, id string, dir stock.Direction) error {
	ev, err := store.LumberEventByID(ctx, id)
	if err != nil {
		return err
	}
	subject := s.describeKey(ctx, ev.LumberKey)

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.AdjustLumber(ctx, ev.LumberKey, ev.Amount, dir.Inverse(), subject); err != nil {
			return err
		}
		return store.DeleteLumberEvent(ctx, id)
	})
}

func (s *LumberService) listRange(ctx context.Context, store repository.LumberEventStore, start, end *time.Time) (*models.LumberRangeResult, error) {
	from, to, err := resolveRange(start, end, s.now)
	if err != nil {
		return nil, err
	}
	events, err := store.ListLumberEventsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	var total int64
	for _, ev := range events {
		total += ev.Amount
	}
	return &models.LumberRangeResult{Events: events, Total: total}, nil
}

// CreateArrival records an incoming lumber movement and adds its amount to
// stock. Same-day arrivals with an identical key and supplier merge.
func (s *LumberService) CreateArrival(ctx context.Context, in models.LumberEventInput) (*models.LumberEvent, error) {
	return s.create(ctx, s.arrivals, in, stock.Add)
}

// CreateArrivalBatch records a batch of arrivals. Items are committed
// independently; failures are collected as per-item messages.
func (s *LumberService) CreateArrivalBatch(ctx context.Context, ins []models.LumberEventInput) ([]models.LumberEvent, []string) {
	return s.createBatch(ctx, s.arrivals, ins, stock.Add)
}

// EditArrival changes an arrival's amount, cascading the delta to stock.
func (s *LumberService) EditArrival(ctx context.Context, id string, amount int64) (*models.LumberEvent, error) {
	return s.edit(ctx, s.arrivals, id, amount, stock.Add)
}

// DeleteArrival removes an arrival, subtracting its amount from stock.
func (s *LumberService) DeleteArrival(ctx context.Context, id string) error {
	return s.remove(ctx, s.arrivals, id, stock.Add)
}

// ArrivalsBetween lists arrivals in an inclusive day range with the total.
func (s *LumberService) ArrivalsBetween(ctx context.Context, start, end *time.Time) (*models.LumberRangeResult, error) {
	return s.listRange(ctx, s.arrivals, start, end)
}

// ArrivalDayStats summarizes one day of arrivals.
func (s *LumberService) ArrivalDayStats(ctx context.Context, day time.Time) (*models.LumberRangeResult, error) {
	return s.listRange(ctx, s.arrivals, &day, &day)
}

// CreateShipment records an outgoing lumber movement and subtracts its
// amount from stock, failing with InsufficientStock when the warehouse
// cannot cover it.
func (s *LumberService) CreateShipment(ctx context.Context, in models.LumberEventInput) (*models.LumberEvent, error) {
	return s.create(ctx, s.shipments, in, stock.Subtract)
}

// CreateShipmentBatch records a batch of shipments with per-item commits.
func (s *LumberService) CreateShipmentBatch(ctx context.Context, ins []models.LumberEventInput) ([]models.LumberEvent, []string) {
	return s.createBatch(ctx, s.shipments, ins, stock.Subtract)
}

// EditShipment changes a shipment's amount, cascading the delta to stock.
func (s *LumberService) EditShipment(ctx context.Context, id string, amount int64) (*models.LumberEvent, error) {
	return s.edit(ctx, s.shipments, id, amount, stock.Subtract)
}

// DeleteShipment removes a shipment, returning its amount to stock.
func (s *LumberService) DeleteShipment(ctx context.Context, id string) error {
	return s.remove(ctx, s.shipments, id, stock.Subtract)
}

// ShipmentsBetween lists shipments in an inclusive day range with the total.
func (s *LumberService) ShipmentsBetween(ctx context.Context, start, end *time.Time) (*models.LumberRangeResult, error) {
	return s.listRange(ctx, s.shipments, start, end)
}

// ShipmentDayStats summarizes one day of shipments.
func (s *LumberService) ShipmentDayStats(ctx context.Context, day time.Time) (*models.LumberRangeResult, error) {
	return s.listRange(ctx, s.shipments, &day, &day)
}

func (s *LumberService) createBatch(ctx context.Context, store repository.LumberEventStore, ins []models.LumberEventInput, dir stock.Direction) ([]models.LumberEvent, []string) {
	var created []models.LumberEvent
	var failures []string
	for i, in := range ins {
		ev, err := s.create(ctx, store, in, dir)
		if err != nil {
			failures = append(failures, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		created = append(created, *ev)
	}
	return created, failures
}

// ShadowShipment posts an automatic shipment (no counterpart) for quantity
// removed by a drying load. It joins the caller's transaction scope.
func (s *LumberService) ShadowShipment(ctx context.Context, key models.LumberKey, amount int64, date time.Time) error {
	subject := s.describeKey(ctx, key)
	if err := s.ledger.AdjustLumber(ctx, key, amount, stock.Subtract, subject); err != nil {
		return err
	}
	return s.mergeShadow(ctx, s.shipments, key, amount, date)
}

// ShadowArrival posts an automatic arrival (no counterpart) for quantity
// produced by drying unload or workshop output. It joins the caller's
// transaction scope.
func (s *LumberService) ShadowArrival(ctx context.Context, key models.LumberKey, amount int64, date time.Time) error {
	subject := s.describeKey(ctx, key)
	if err := s.ledger.AdjustLumber(ctx, key, amount, stock.Add, subject); err != nil {
		return err
	}
	return s.mergeShadow(ctx, s.arrivals, key, amount, date)
}

// ShadowArrivalDelta re-applies a signed delta to the same-day shadow
// arrival and the mirrored stock. The arrival row is deleted when it reaches
// zero and the call fails when it would go negative.
func (s *LumberService) ShadowArrivalDelta(ctx context.Context, key models.LumberKey, date time.Time, delta int64) error {
	if delta == 0 {
		return nil
	}
	subject := s.describeKey(ctx, key)

	ev, err := s.arrivals.FindLumberEventByDayKey(ctx, models.Day(date), key, "")
	if err != nil {
		return fmt.Errorf("mirrored arrival for %s: %w", subject, err)
	}

	if delta > 0 {
		if err := s.ledger.AdjustLumber(ctx, key, delta, stock.Add, subject); err != nil {
			return err
		}
		return s.arrivals.UpdateLumberEventAmount(ctx, ev.ID, ev.Amount+delta)
	}

	need := -delta
	if ev.Amount < need {
		return &errs.InsufficientStock{
			Subject:   "mirrored arrival of " + subject,
			Current:   quantity.FromPieces(ev.Amount),
			Requested: quantity.FromPieces(need),
		}
	}
	if err := s.ledger.AdjustLumber(ctx, key, need, stock.Subtract, subject); err != nil {
		return err
	}
	if ev.Amount == need {
		return s.arrivals.DeleteLumberEvent(ctx, ev.ID)
	}
	return s.arrivals.UpdateLumberEventAmount(ctx, ev.ID, ev.Amount-need)
}

func (s *LumberService) mergeShadow(ctx context.Context, store repository.LumberEventStore, key models.LumberKey, amount int64, date time.Time) error {
	existing, err := store.FindLumberEventByDayKey(ctx, models.Day(date), key, "")
	switch {
	case err == nil:
		return store.UpdateLumberEventAmount(ctx, existing.ID, existing.Amount+amount)
	case errors.Is(err, errs.ErrNotFound):
		return store.InsertLumberEvent(ctx, &models.LumberEvent{Date: date, LumberKey: key, Amount: amount})
	default:
		return fmt.Errorf("find same-day shadow event: %w", err)
	}
}
