// Package workshop records sawn output per workshop and day, mirrors it
// into the wet-lumber stream and computes daily profitability.
package workshop

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
)

const maxRangeDays = 31

// LumberMirror posts and re-adjusts shadow wet arrivals inside the caller's
// transaction scope. Implemented by movement.LumberService.
type LumberMirror interface {
	ShadowArrival(ctx context.Context, key models.LumberKey, amount int64, date time.Time) error
	ShadowArrivalDelta(ctx context.Context, key models.LumberKey, date time.Time, delta int64) error
}

// LogConsumer debits and restores raw-log stock consumed by sawing.
// Implemented by movement.LogService.
type LogConsumer interface {
	ConsumeForSawing(ctx context.Context, designationID string, volume decimal.Decimal) error
	RestoreSawingDebit(ctx context.Context, designationID string, volume decimal.Decimal) error
}

// Costs holds the fixed per-cubic-meter production costs used by the profit
// report.
type Costs struct {
	RawMaterialPerCubicMeter decimal.Decimal
	SawingPerCubicMeter      decimal.Decimal
}

// Service implements the workshop throughput ledger.
type Service struct {
	refs       repository.ReferenceReader
	throughput repository.ThroughputStore
	lumber     LumberMirror
	logs       LogConsumer
	tx         repository.TxRunner
	costs      Costs
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the workshop service.
func NewService(refs repository.ReferenceReader, throughput repository.ThroughputStore,
	lumber LumberMirror, logs LogConsumer, tx repository.TxRunner, costs Costs, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		refs:       refs,
		throughput: throughput,
		lumber:     lumber,
		logs:       logs,
		tx:         tx,
		costs:      costs,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) wetKey(ctx context.Context, gradeID, dimensionID, speciesID string) (models.LumberKey, error) {
	wet, err := s.refs.ConditionByName(ctx, models.ConditionWet)
	if err != nil {
		return models.LumberKey{}, err
	}
	return models.LumberKey{
		SpeciesID:   speciesID,
		GradeID:     gradeID,
		DimensionID: dimensionID,
		ConditionID: wet.ID,
	}, nil
}

// RecordOutput saves one sawing run: same-day output for the key merges by
// summation, a shadow wet arrival mirrors the produced pieces and the
// optional raw-log consumption is debited, all in one transaction.
func (s *Service) RecordOutput(ctx context.Context, in models.ThroughputInput) (*models.WorkshopThroughput, error) {
	if in.Amount <= 0 {
		return nil, errs.Invalidf("amount must be positive, got %d", in.Amount)
	}
	workshop, err := s.refs.WorkshopByID(ctx, in.WorkshopID)
	if err != nil {
		return nil, err
	}
	if _, ok := workshop.PriceFor(in.GradeID, in.DimensionID); !ok {
		return nil, errs.NotFoundf("workshop %s has no price for grade %s dimension %s", workshop.Name, in.GradeID, in.DimensionID)
	}
	if _, err := s.refs.SpeciesByID(ctx, in.SpeciesID); err != nil {
		return nil, err
	}
	if _, err := s.refs.GradeByID(ctx, in.GradeID); err != nil {
		return nil, err
	}
	if _, err := s.refs.DimensionByID(ctx, in.DimensionID); err != nil {
		return nil, err
	}
	key, err := s.wetKey(ctx, in.GradeID, in.DimensionID, in.SpeciesID)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	logVolume := quantity.Round(in.LogVolume)

	var out *models.WorkshopThroughput
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.throughput.FindThroughputByDayKey(ctx, in.WorkshopID, models.Day(date), in.GradeID, in.DimensionID)
		switch {
		case err == nil:
			if existing.SpeciesID != in.SpeciesID {
				return errs.Invalidf("same-day output for this key was recorded with species %s", existing.SpeciesID)
			}
			if in.LogDesignationID != "" && existing.LogDesignationID != "" && existing.LogDesignationID != in.LogDesignationID {
				return errs.Invalidf("same-day output already consumed designation %s", existing.LogDesignationID)
			}
			existing.Amount += in.Amount
			if in.LogDesignationID != "" && logVolume.Sign() > 0 {
				existing.LogDesignationID = in.LogDesignationID
				existing.LogVolume = quantity.Round(existing.LogVolume.Add(logVolume))
			}
			if err := s.throughput.UpdateThroughput(ctx, existing); err != nil {
				return fmt.Errorf("merge same-day output: %w", err)
			}
			out = existing
		case errors.Is(err, errs.ErrNotFound):
			rec := &models.WorkshopThroughput{
				WorkshopID:       in.WorkshopID,
				SpeciesID:        in.SpeciesID,
				Date:             date,
				GradeID:          in.GradeID,
				DimensionID:      in.DimensionID,
				Amount:           in.Amount,
				LogDesignationID: in.LogDesignationID,
				LogVolume:        logVolume,
			}
			if err := s.throughput.InsertThroughput(ctx, rec); err != nil {
				return fmt.Errorf("insert output: %w", err)
			}
			out = rec
		default:
			return fmt.Errorf("find same-day output: %w", err)
		}

		if err := s.lumber.ShadowArrival(ctx, key, in.Amount, date); err != nil {
			return err
		}
		if in.LogDesignationID != "" && logVolume.Sign() > 0 {
			return s.logs.ConsumeForSawing(ctx, in.LogDesignationID, logVolume)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workshop output recorded",
		zap.String("workshop", workshop.Name), zap.Int64("amount", in.Amount),
		zap.String("grade", in.GradeID), zap.String("dimension", in.DimensionID))
	return out, nil
}

// Edit changes a recorded output's amount, re-applying the delta to the
// throughput row, the mirrored wet arrival and wet stock.
func (s *Service) Edit(ctx context.Context, id string, amount int64) (*models.WorkshopThroughput, error) {
	if amount <= 0 {
		return nil, errs.Invalidf("amount must be positive, got %d", amount)
	}
	rec, err := s.throughput.ThroughputByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delta := amount - rec.Amount
	if delta == 0 {
		return rec, nil
	}
	key, err := s.wetKey(ctx, rec.GradeID, rec.DimensionID, rec.SpeciesID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.lumber.ShadowArrivalDelta(ctx, key, rec.Date, delta); err != nil {
			return err
		}
		updated := *rec
		updated.Amount = amount
		return s.throughput.UpdateThroughput(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	rec.Amount = amount
	return rec, nil
}

// Delete removes a recorded output, retracting the mirrored wet arrival and
// crediting back the raw-log debit.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.throughput.ThroughputByID(ctx, id)
	if err != nil {
		return err
	}
	key, err := s.wetKey(ctx, rec.GradeID, rec.DimensionID, rec.SpeciesID)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.lumber.ShadowArrivalDelta(ctx, key, rec.Date, -rec.Amount); err != nil {
			return err
		}
		if rec.LogDesignationID != "" && rec.LogVolume.Sign() > 0 {
			if err := s.logs.RestoreSawingDebit(ctx, rec.LogDesignationID, rec.LogVolume); err != nil {
				return err
			}
		}
		return s.throughput.DeleteThroughput(ctx, id)
	})
}

func (s *Service) resolveRange(start, end *time.Time) (time.Time, time.Time, error) {
	var from, to time.Time
	switch {
	case start == nil && end == nil:
		from = models.Day(s.now())
		to = from
	case start != nil && end == nil:
		from = models.Day(*start)
		to = from
	case start == nil && end != nil:
		from = models.Day(*end)
		to = from
	default:
		from = models.Day(*start)
		to = models.Day(*end)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errs.Invalidf("range end precedes start")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxRangeDays {
		return time.Time{}, time.Time{}, errs.Invalidf("range of %d days exceeds the %d day limit", days, maxRangeDays)
	}
	return from, to, nil
}

// StatsBetween returns per-row output statistics with produced volumes.
func (s *Service) StatsBetween(ctx context.Context, workshopID string, start, end *time.Time) ([]models.ThroughputStat, error) {
	from, to, err := s.resolveRange(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.throughput.ListThroughputBetween(ctx, workshopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list throughput: %w", err)
	}

	stats := make([]models.ThroughputStat, 0, len(rows))
	for _, row := range rows {
		dim, err := s.refs.DimensionByID(ctx, row.DimensionID)
		if err != nil {
			return nil, err
		}
		stats = append(stats, models.ThroughputStat{
			Date:        models.Day(row.Date),
			WorkshopID:  row.WorkshopID,
			GradeID:     row.GradeID,
			DimensionID: row.DimensionID,
			Amount:      row.Amount,
			Volume:      quantity.PieceTotal(dim.UnitVolume(), row.Amount),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.Before(stats[j].Date) })
	return stats, nil
}

// DayStats returns output statistics for a single day.
func (s *Service) DayStats(ctx context.Context, workshopID string, day time.Time) ([]models.ThroughputStat, error) {
	return s.StatsBetween(ctx, workshopID, &day, &day)
}

// Profit reports daily profitability: revenue from the workshop price list
// minus fixed raw-material and sawing costs, divided by the day's produced
// volume. Days without volume report zero profit per cubic meter.
func (s *Service) Profit(ctx context.Context, workshopID string, start, end *time.Time) ([]models.ProfitEntry, error) {
	workshop, err := s.refs.WorkshopByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.throughput.ListThroughputBetween(ctx, workshopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list throughput: %w", err)
	}

	type agg struct {
		volume  decimal.Decimal
		revenue decimal.Decimal
	}
	days := map[time.Time]*agg{}
	for _, row := range rows {
		dim, err := s.refs.DimensionByID(ctx, row.DimensionID)
		if err != nil {
			return nil, err
		}
		volume := quantity.PieceTotal(dim.UnitVolume(), row.Amount)

		day := models.Day(row.Date)
		a, ok := days[day]
		if !ok {
			a = &agg{volume: decimal.Zero, revenue: decimal.Zero}
			days[day] = a
		}
		a.volume = quantity.Round(a.volume.Add(volume))
		if price, ok := workshop.PriceFor(row.GradeID, row.DimensionID); ok {
			a.revenue = a.revenue.Add(price.Price.Mul(volume))
		}
	}

	costRate := s.costs.RawMaterialPerCubicMeter.Add(s.costs.SawingPerCubicMeter)
	entries := make([]models.ProfitEntry, 0, len(days))
	for day, a := range days {
		cost := costRate.Mul(a.volume)
		profit := a.revenue.Sub(cost)
		perUnit := decimal.Zero
		if a.volume.Sign() > 0 {
			perUnit = profit.DivRound(a.volume, quantity.VolumeScale)
		}
		entries = append(entries, models.ProfitEntry{
			Date:                day,
			Volume:              a.volume,
			Revenue:             quantity.Round(a.revenue),
			Cost:                quantity.Round(cost),
			Profit:              quantity.Round(profit),
			ProfitPerCubicMeter: perUnit,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}
