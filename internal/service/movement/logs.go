package movement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/domain/quantity"
	"github.com/woodtrack/sawmill/internal/repository"
	"github.com/woodtrack/sawmill/internal/service/designation"
	"github.com/woodtrack/sawmill/internal/service/stock"
)

// LogService maintains the raw-log arrival and shipment logs. Creation
// resolves the designation stock key from species, length and diameter and
// derives the event volume before cascading into the log stock ledger.
type LogService struct {
	refs         repository.ReferenceReader
	resolver     *designation.Resolver
	designations repository.DesignationStore
	ledger       *stock.Ledger
	arrivals     repository.LogEventStore
	shipments    repository.LogEventStore
	tx           repository.TxRunner
	logger       *zap.Logger
	now          func() time.Time
}

// NewLogService wires the raw-log movement service.
func NewLogService(refs repository.ReferenceReader, resolver *designation.Resolver,
	designations repository.DesignationStore, ledger *stock.Ledger,
	arrivals, shipments repository.LogEventStore, tx repository.TxRunner, logger *zap.Logger) *LogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogService{
		refs:         refs,
		resolver:     resolver,
		designations: designations,
		ledger:       ledger,
		arrivals:     arrivals,
		shipments:    shipments,
		tx:           tx,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *LogService) describeDesignation(ctx context.Context, designationID string) string {
	d, err := s.designations.DesignationByID(ctx, designationID)
	if err != nil {
		return "designation " + designationID
	}
	return d.Name
}

// eventVolume derives the event quantity: direct volume for balance logs,
// piece volume times piece count for sized sawlogs.
func eventVolume(in models.LogEventInput) (decimal.Decimal, int, error) {
	if in.Volume.Sign() > 0 {
		diameter := in.Diameter
		if diameter == 0 {
			diameter = models.PulpwoodMaxDiameter
		}
		return quantity.Round(in.Volume), diameter, nil
	}
	if in.Diameter <= 0 || in.Pieces <= 0 || in.PieceVolume.Sign() <= 0 {
		return decimal.Zero, 0, errs.Invalidf("either volume, or diameter with pieces and piece volume, must be provided")
	}
	return quantity.PieceTotal(in.PieceVolume, in.Pieces), in.Diameter, nil
}

func (s *LogService) create(ctx context.Context, store repository.LogEventStore, in models.LogEventInput, dir stock.Direction) (*models.LogEvent, error) {
	if _, err := s.refs.SpeciesByID(ctx, in.SpeciesID); err != nil {
		return nil, err
	}
	if in.CounterpartID != "" {
		if dir == stock.Add {
			if _, err := s.refs.SupplierByID(ctx, in.CounterpartID); err != nil {
				return nil, err
			}
		} else if _, err := s.refs.BuyerByID(ctx, in.CounterpartID); err != nil {
			return nil, err
		}
	}

	volume, diameter, err := eventVolume(in)
	if err != nil {
		return nil, err
	}

	des, err := s.resolver.Resolve(ctx, in.SpeciesID, in.Length, diameter)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	var out *models.LogEvent
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.AdjustLogVolume(ctx, des.ID, volume, dir, des.Name); err != nil {
			return err
		}

		existing, err := store.FindLogEventByDayKey(ctx, models.Day(date), des.ID, in.CounterpartID)
		switch {
		case err == nil:
			existing.Volume = quantity.Round(existing.Volume.Add(volume))
			if err := store.UpdateLogEventVolume(ctx, existing.ID, existing.Volume); err != nil {
				return fmt.Errorf("merge same-day event: %w", err)
			}
			out = existing
			return nil
		case errors.Is(err, errs.ErrNotFound):
			ev := &models.LogEvent{
				Date:          date,
				DesignationID: des.ID,
				Volume:        volume,
				Pieces:        in.Pieces,
				Diameter:      in.Diameter,
				Length:        in.Length,
				CounterpartID: in.CounterpartID,
				Transport:     in.Transport,
			}
			if err := store.InsertLogEvent(ctx, ev); err != nil {
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

	s.logger.Info("log event recorded",
		zap.String("direction", dir.String()), zap.String("designation", des.Name),
		zap.String("volume", volume.String()), zap.String("event_id", out.ID))
	return out, nil
}

func (s *LogService) edit(ctx context.Context, store repository.LogEventStore, id string, volume decimal.Decimal, dir stock.Direction) (*models.LogEvent, error) {
	volume = quantity.Round(volume)
	if volume.Sign() <= 0 {
		return nil, errs.Invalidf("volume must be positive, got %s", volume)
	}

	ev, err := store.LogEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delta := volume.Sub(ev.Volume)
	if delta.IsZero() {
		return ev, nil
	}

	stockDir := dir
	magnitude := delta
	if delta.Sign() < 0 {
		stockDir = dir.Inverse()
		magnitude = delta.Neg()
	}
	subject := s.describeDesignation(ctx, ev.DesignationID)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.AdjustLogVolume(ctx, ev.DesignationID, magnitude, stockDir, subject); err != nil {
			return err
		}
		return store.UpdateLogEventVolume(ctx, id, volume)
	})
	if err != nil {
		return nil, err
	}

	ev.Volume = volume
	return ev, nil
}

func (s *LogService) remove(ctx context.Context, store repository.LogEventStore, id string, dir stock.Direction) error {
	ev, err := store.LogEventByID(ctx, id)
	if err != nil {
		return err
	}
	subject := s.describeDesignation(ctx, ev.DesignationID)

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.AdjustLogVolume(ctx, ev.DesignationID, ev.Volume, dir.Inverse(), subject); err != nil {
			return err
		}
		return store.DeleteLogEvent(ctx, id)
	})
}

func (s *LogService) listRange(ctx context.Context, store repository.LogEventStore, start, end *time.Time) (*models.LogRangeResult, error) {
	from, to, err := resolveRange(start, end, s.now)
	if err != nil {
		return nil, err
	}
	events, err := store.ListLogEventsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	total := decimal.Zero
	for _, ev := range events {
		total = total.Add(ev.Volume)
	}
	return &models.LogRangeResult{Events: events, Total: quantity.Round(total)}, nil
}

// CreateArrival records an incoming log movement and adds its volume to the
// designation's stock.
func (s *LogService) CreateArrival(ctx context.Context, in models.LogEventInput) (*models.LogEvent, error) {
	return s.create(ctx, s.arrivals, in, stock.Add)
}

// CreateArrivalBatch records a batch of log arrivals with per-item commits
// and collected failure messages.
func (s *LogService) CreateArrivalBatch(ctx context.Context, ins []models.LogEventInput) ([]models.LogEvent, []string) {
	return s.createBatch(ctx, s.arrivals, ins, stock.Add)
}

// EditArrival changes an arrival's volume, cascading the delta to stock.
func (s *LogService) EditArrival(ctx context.Context, id string, volume decimal.Decimal) (*models.LogEvent, error) {
	return s.edit(ctx, s.arrivals, id, volume, stock.Add)
}

// DeleteArrival removes an arrival, subtracting its volume from stock.
func (s *LogService) DeleteArrival(ctx context.Context, id string) error {
	return s.remove(ctx, s.arrivals, id, stock.Add)
}

// ArrivalsBetween lists log arrivals in an inclusive day range.
func (s *LogService) ArrivalsBetween(ctx context.Context, start, end *time.Time) (*models.LogRangeResult, error) {
	return s.listRange(ctx, s.arrivals, start, end)
}

// ArrivalDayStats summarizes one day of log arrivals.
func (s *LogService) ArrivalDayStats(ctx context.Context, day time.Time) (*models.LogRangeResult, error) {
	return s.listRange(ctx, s.arrivals, &day, &day)
}

// CreateShipment records an outgoing log movement, subtracting its volume
// from the designation's stock.
func (s *LogService) CreateShipment(ctx context.Context, in models.LogEventInput) (*models.LogEvent, error) {
	return s.create(ctx, s.shipments, in, stock.Subtract)
}

// CreateShipmentBatch records a batch of log shipments with per-item commits.
func (s *LogService) CreateShipmentBatch(ctx context.Context, ins []models.LogEventInput) ([]models.LogEvent, []string) {
	return s.createBatch(ctx, s.shipments, ins, stock.Subtract)
}

// EditShipment changes a shipment's volume, cascading the delta to stock.
func (s *LogService) EditShipment(ctx context.Context, id string, volume decimal.Decimal) (*models.LogEvent, error) {
	return s.edit(ctx, s.shipments, id, volume, stock.Subtract)
}

// DeleteShipment removes a shipment, returning its volume to stock.
func (s *LogService) DeleteShipment(ctx context.Context, id string) error {
	return s.remove(ctx, s.shipments, id, stock.Subtract)
}

// ShipmentsBetween lists log shipments in an inclusive day range.
func (s *LogService) ShipmentsBetween(ctx context.Context, start, end *time.Time) (*models.LogRangeResult, error) {
	return s.listRange(ctx, s.shipments, start, end)
}

// ShipmentDayStats summarizes one day of log shipments.
func (s *LogService) ShipmentDayStats(ctx context.Context, day time.Time) (*models.LogRangeResult, error) {
	return s.listRange(ctx, s.shipments, &day, &day)
}

// ConsumeForSawing debits raw-log stock for logs consumed by a workshop,
// joining the caller's transaction scope.
func (s *LogService) ConsumeForSawing(ctx context.Context, designationID string, volume decimal.Decimal) error {
	subject := s.describeDesignation(ctx, designationID)
	return s.ledger.AdjustLogVolume(ctx, designationID, volume, stock.Subtract, subject)
}

// RestoreSawingDebit credits raw-log stock back when a workshop output
// record is deleted. It joins the caller's transaction scope.
func (s *LogService) RestoreSawingDebit(ctx context.Context, designationID string, volume decimal.Decimal) error {
	subject := s.describeDesignation(ctx, designationID)
	return s.ledger.AdjustLogVolume(ctx, designationID, volume, stock.Add, subject)
}

func (s *LogService) createBatch(ctx context.Context, store repository.LogEventStore, ins []models.LogEventInput, dir stock.Direction) ([]models.LogEvent, []string) {
	var created []models.LogEvent
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
