// Package reporting exposes warehouse projections and the daily warehouse
// report archived to MongoDB and exported to the reporting spreadsheet.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/domain/quantity"
	"github.com/woodtrack/sawmill/internal/repository"
	sheetsrepo "github.com/woodtrack/sawmill/internal/repository/sheets"
)

const (
	dateLayout       = "2006-01-02"
	reportSheetRange = "Warehouse!A:F"
)

// Service aggregates stock projections. All reads are side-effect free.
type Service struct {
	lumber  repository.LumberStockStore
	logs    repository.LogStockStore
	refs    repository.ReferenceReader
	reports repository.ReportStore
	sheets  sheetsrepo.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a reporting service. sheets may be nil when the
// spreadsheet export is disabled.
func NewService(lumber repository.LumberStockStore, logs repository.LogStockStore,
	refs repository.ReferenceReader, reports repository.ReportStore,
	sheets sheetsrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		lumber:  lumber,
		logs:    logs,
		refs:    refs,
		reports: reports,
		sheets:  sheets,
		logger:  logger,
		now:     time.Now,
	}
}

// ListLumberByCondition lists lumber stock, optionally filtered by the
// condition name (wet or dry). An empty name lists everything.
func (s *Service) ListLumberByCondition(ctx context.Context, conditionName string) ([]models.LumberStock, error) {
	var filter repository.LumberStockFilter
	if conditionName != "" {
		cond, err := s.refs.ConditionByName(ctx, conditionName)
		if err != nil {
			return nil, err
		}
		filter.ConditionID = cond.ID
	}
	return s.lumber.ListLumberStock(ctx, filter)
}

// ListLogs lists the raw-log stock aggregates.
func (s *Service) ListLogs(ctx context.Context) ([]models.LogStock, error) {
	return s.logs.ListLogStock(ctx)
}

// OverallStats aggregates lumber stock by species and grade, with volume
// derived from the dimension unit volume times the piece count.
func (s *Service) OverallStats(ctx context.Context) ([]models.SpeciesGradeStat, error) {
	records, err := s.lumber.ListLumberStock(ctx, repository.LumberStockFilter{})
	if err != nil {
		return nil, fmt.Errorf("list lumber stock: %w", err)
	}

	type pair struct{ species, grade string }
	groups := map[pair]*models.SpeciesGradeStat{}
	for _, rec := range records {
		dim, err := s.refs.DimensionByID(ctx, rec.DimensionID)
		if err != nil {
			return nil, err
		}
		volume := quantity.PieceTotal(dim.UnitVolume(), rec.Amount)

		k := pair{rec.SpeciesID, rec.GradeID}
		stat, ok := groups[k]
		if !ok {
			sp, err := s.refs.SpeciesByID(ctx, rec.SpeciesID)
			if err != nil {
				return nil, err
			}
			gr, err := s.refs.GradeByID(ctx, rec.GradeID)
			if err != nil {
				return nil, err
			}
			stat = &models.SpeciesGradeStat{
				SpeciesID:   rec.SpeciesID,
				SpeciesName: sp.Name,
				GradeID:     rec.GradeID,
				GradeName:   gr.Name,
				Volume:      decimal.Zero,
			}
			groups[k] = stat
		}
		stat.Amount += rec.Amount
		stat.Volume = quantity.Round(stat.Volume.Add(volume))
	}

	stats := make([]models.SpeciesGradeStat, 0, len(groups))
	for _, stat := range groups {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SpeciesName != stats[j].SpeciesName {
			return stats[i].SpeciesName < stats[j].SpeciesName
		}
		return stats[i].GradeName < stats[j].GradeName
	})
	return stats, nil
}

// DeleteLumberRecord administratively removes a lumber stock record.
func (s *Service) DeleteLumberRecord(ctx context.Context, id string) error {
	return s.lumber.DeleteLumberStock(ctx, id)
}

// DeleteLogRecord administratively removes a log stock record.
func (s *Service) DeleteLogRecord(ctx context.Context, id string) error {
	return s.logs.DeleteLogStock(ctx, id)
}

// GenerateDailyReport snapshots the warehouse, archives the report and
// appends a spreadsheet row when the export is configured. It returns the
// report and its human-readable summary.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (*models.DailyReport, string, error) {
	report := &models.DailyReport{
		Date:            models.Day(day),
		WetLumberVolume: decimal.Zero,
		DryLumberVolume: decimal.Zero,
		LogVolume:       decimal.Zero,
		CreatedAt:       s.now(),
	}

	records, err := s.lumber.ListLumberStock(ctx, repository.LumberStockFilter{})
	if err != nil {
		return nil, "", fmt.Errorf("list lumber stock: %w", err)
	}
	for _, rec := range records {
		cond, err := s.refs.ConditionByID(ctx, rec.ConditionID)
		if err != nil {
			return nil, "", err
		}
		dim, err := s.refs.DimensionByID(ctx, rec.DimensionID)
		if err != nil {
			return nil, "", err
		}
		volume := quantity.PieceTotal(dim.UnitVolume(), rec.Amount)

		switch cond.Name {
		case models.ConditionWet:
			report.WetLumberPieces += rec.Amount
			report.WetLumberVolume = quantity.Round(report.WetLumberVolume.Add(volume))
		case models.ConditionDry:
			report.DryLumberPieces += rec.Amount
			report.DryLumberVolume = quantity.Round(report.DryLumberVolume.Add(volume))
		}
	}

	logRecords, err := s.logs.ListLogStock(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list log stock: %w", err)
	}
	for _, rec := range logRecords {
		report.LogVolume = quantity.Round(report.LogVolume.Add(rec.Volume))
	}

	if err := s.reports.SaveDailyReport(ctx, report); err != nil {
		return nil, "", fmt.Errorf("archive daily report: %w", err)
	}

	if s.sheets != nil {
		row := []interface{}{
			report.Date.Format(dateLayout),
			report.WetLumberPieces,
			report.WetLumberVolume.String(),
			report.DryLumberPieces,
			report.DryLumberVolume.String(),
			report.LogVolume.String(),
		}
		if err := s.sheets.WriteRow(ctx, reportSheetRange, row); err != nil {
			// The archived report is authoritative; a failed export must not
			// fail the report run.
			s.logger.Error("spreadsheet export failed", zap.Error(err))
		}
	}

	text := fmt.Sprintf(
		"Warehouse report %s: wet lumber %d pcs (%s m3), dry lumber %d pcs (%s m3), logs %s m3.",
		report.Date.Format(dateLayout),
		report.WetLumberPieces, report.WetLumberVolume.String(),
		report.DryLumberPieces, report.DryLumberVolume.String(),
		report.LogVolume.String())

	return report, text, nil
}
