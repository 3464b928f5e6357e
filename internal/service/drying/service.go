// Package drying models the chamber drying cycle. Loading a chamber removes
// wet lumber from stock through a shadow shipment; unloading returns the
// same quantity as dry lumber through a shadow arrival.
package drying

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository"
)

// ShadowPoster posts automatic lumber movements inside the caller's
// transaction scope. Implemented by movement.LumberService.
type ShadowPoster interface {
	ShadowShipment(ctx context.Context, key models.LumberKey, amount int64, date time.Time) error
	ShadowArrival(ctx context.Context, key models.LumberKey, amount int64, date time.Time) error
}

// Service drives the per-chamber state machine: Idle -> Drying -> Idle, with
// unloaded batches retained as history.
type Service struct {
	refs     repository.ReferenceReader
	chambers repository.ChamberStore
	batches  repository.DryingBatchStore
	lumber   ShadowPoster
	tx       repository.TxRunner
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the drying service.
func NewService(refs repository.ReferenceReader, chambers repository.ChamberStore,
	batches repository.DryingBatchStore, lumber ShadowPoster, tx repository.TxRunner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		refs:     refs,
		chambers: chambers,
		batches:  batches,
		lumber:   lumber,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// Load places a batch into a chamber. The chamber must be idle; the load,
// the iteration bump and the shadow wet shipment commit atomically, so an
// insufficient-wet-stock failure leaves the chamber untouched.
func (s *Service) Load(ctx context.Context, chamberID string, in models.DryingLoadInput) (*models.DryingBatch, error) {
	chamber, err := s.chambers.ChamberByID(ctx, chamberID)
	if err != nil {
		return nil, err
	}

	if _, err := s.batches.ActiveDryingBatchByChamber(ctx, chamberID); err == nil {
		return nil, errs.Conflictf("chamber %s is occupied", chamber.Name)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("check chamber occupancy: %w", err)
	}

	if in.Amount <= 0 {
		return nil, errs.Invalidf("amount must be positive, got %d", in.Amount)
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
	wet, err := s.refs.ConditionByName(ctx, models.ConditionWet)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	batch := &models.DryingBatch{
		ChamberID:        chamberID,
		SpeciesID:        in.SpeciesID,
		GradeID:          in.GradeID,
		DimensionID:      in.DimensionID,
		Amount:           in.Amount,
		IsDrying:         true,
		ChamberIteration: chamber.Iteration + 1,
		LoadedAt:         date,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		chamber.Iteration++
		if err := s.chambers.SaveChamber(ctx, chamber); err != nil {
			return fmt.Errorf("bump chamber iteration: %w", err)
		}
		if err := s.batches.InsertDryingBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		key := models.LumberKey{
			SpeciesID:   in.SpeciesID,
			GradeID:     in.GradeID,
			DimensionID: in.DimensionID,
			ConditionID: wet.ID,
		}
		return s.lumber.ShadowShipment(ctx, key, in.Amount, date)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chamber loaded",
		zap.String("chamber", chamber.Name), zap.Int64("amount", in.Amount),
		zap.Int("iteration", batch.ChamberIteration))
	return batch, nil
}

// Unload takes the active batch out of a chamber and returns its quantity
// to stock as dry lumber, merged into any same-day dry arrival for the key.
func (s *Service) Unload(ctx context.Context, chamberID string) (*models.DryingBatch, error) {
	chamber, err := s.chambers.ChamberByID(ctx, chamberID)
	if err != nil {
		return nil, err
	}
	batch, err := s.batches.ActiveDryingBatchByChamber(ctx, chamberID)
	if err != nil {
		return nil, err
	}
	dry, err := s.refs.ConditionByName(ctx, models.ConditionDry)
	if err != nil {
		return nil, err
	}

	date := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		batch.IsDrying = false
		batch.IsTakenOut = true
		batch.UnloadedAt = date
		if err := s.batches.UpdateDryingBatch(ctx, batch); err != nil {
			return fmt.Errorf("update batch: %w", err)
		}

		key := models.LumberKey{
			SpeciesID:   batch.SpeciesID,
			GradeID:     batch.GradeID,
			DimensionID: batch.DimensionID,
			ConditionID: dry.ID,
		}
		return s.lumber.ShadowArrival(ctx, key, batch.Amount, date)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chamber unloaded",
		zap.String("chamber", chamber.Name), zap.Int64("amount", batch.Amount))
	return batch, nil
}

// ActiveByChamber returns the chamber's active batch, if any, as a list.
func (s *Service) ActiveByChamber(ctx context.Context, chamberID string) ([]models.DryingBatch, error) {
	if _, err := s.chambers.ChamberByID(ctx, chamberID); err != nil {
		return nil, err
	}
	batch, err := s.batches.ActiveDryingBatchByChamber(ctx, chamberID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return []models.DryingBatch{}, nil
		}
		return nil, err
	}
	return []models.DryingBatch{*batch}, nil
}

// ListActive returns the active batches across all chambers.
func (s *Service) ListActive(ctx context.Context) ([]models.DryingBatch, error) {
	return s.batches.ListActiveDryingBatches(ctx)
}

// Erase removes a batch record. Active batches cannot be erased; unload the
// chamber instead.
func (s *Service) Erase(ctx context.Context, batchID string) error {
	batch, err := s.batches.DryingBatchByID(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.IsDrying {
		return errs.Conflictf("batch %s is still drying", batchID)
	}
	return s.batches.DeleteDryingBatch(ctx, batchID)
}
