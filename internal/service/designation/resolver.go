// Package designation resolves a log's species, length and diameter to its
// canonical "wood naming" code, the stock key for raw logs.
package designation

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository"
)

// Resolver matches diameter bands against the designation reference table.
type Resolver struct {
	designations repository.DesignationStore
	logger       *zap.Logger
}

// NewResolver wires a resolver over the designation store.
func NewResolver(designations repository.DesignationStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{designations: designations, logger: logger}
}

// Resolve returns the designation for the given parameters. Diameters at or
// below the pulpwood threshold match only pulpwood bands. Zero matches is a
// NotFound aborting the caller; with several matches the one with the lowest
// band is returned and a warning is logged.
func (r *Resolver) Resolve(ctx context.Context, speciesID string, length float64, diameter int) (*models.Designation, error) {
	candidates, err := r.designations.DesignationsBySpeciesLength(ctx, speciesID, length)
	if err != nil {
		return nil, fmt.Errorf("list designations: %w", err)
	}

	var matched []models.Designation
	for _, d := range candidates {
		if d.Matches(diameter) {
			matched = append(matched, d)
		}
	}

	if len(matched) == 0 {
		return nil, errs.NotFoundf("no designation for species %s, length %v, diameter %d", speciesID, length, diameter)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].MinDiameter != matched[j].MinDiameter {
			return matched[i].MinDiameter < matched[j].MinDiameter
		}
		return matched[i].ID < matched[j].ID
	})

	if len(matched) > 1 {
		r.logger.Warn("ambiguous designation match",
			zap.String("species", speciesID), zap.Float64("length", length),
			zap.Int("diameter", diameter), zap.Int("matches", len(matched)),
			zap.String("picked", matched[0].Name))
	}

	return &matched[0], nil
}
