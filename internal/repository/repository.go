// Package repository declares the persistence contracts consumed by the
// inventory services. MongoDB implements them for production, the memory
// package for tests and local runs.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/models"
)

// TxRunner executes fn inside a single store transaction. Every stock
// adjustment and the event write that triggers it run under one call.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReferenceReader provides read-only lookups of reference data. All methods
// return errs.ErrNotFound wrapped errors when the entity is absent.
type ReferenceReader interface {
	SpeciesByID(ctx context.Context, id string) (*models.WoodSpecies, error)
	GradeByID(ctx context.Context, id string) (*models.LumberGrade, error)
	DimensionByID(ctx context.Context, id string) (*models.Dimension, error)
	ConditionByID(ctx context.Context, id string) (*models.Condition, error)
	ConditionByName(ctx context.Context, name string) (*models.Condition, error)
	SupplierByID(ctx context.Context, id string) (*models.Supplier, error)
	BuyerByID(ctx context.Context, id string) (*models.Buyer, error)
	WorkshopByID(ctx context.Context, id string) (*models.Workshop, error)
}

// ChamberStore reads and updates drying chambers; the iteration counter is
// the only field this subsystem mutates.
type ChamberStore interface {
	ChamberByID(ctx context.Context, id string) (*models.DryerChamber, error)
	SaveChamber(ctx context.Context, chamber *models.DryerChamber) error
}

// DesignationStore lists designation candidates for resolution.
type DesignationStore interface {
	DesignationByID(ctx context.Context, id string) (*models.Designation, error)
	DesignationsBySpeciesLength(ctx context.Context, speciesID string, length float64) ([]models.Designation, error)
}

// LumberStockFilter narrows lumber stock listings.
type LumberStockFilter struct {
	ConditionID string
	SpeciesID   string
}

// LumberStockStore persists sawn-lumber stock aggregates.
type LumberStockStore interface {
	FindLumberStock(ctx context.Context, key models.LumberKey) (*models.LumberStock, error)
	SaveLumberStock(ctx context.Context, rec *models.LumberStock) error
	DeleteLumberStock(ctx context.Context, id string) error
	ListLumberStock(ctx context.Context, filter LumberStockFilter) ([]models.LumberStock, error)
}

// LogStockStore persists raw-log stock aggregates.
type LogStockStore interface {
	FindLogStock(ctx context.Context, designationID string) (*models.LogStock, error)
	SaveLogStock(ctx context.Context, rec *models.LogStock) error
	DeleteLogStock(ctx context.Context, id string) error
	ListLogStock(ctx context.Context) ([]models.LogStock, error)
}

// LumberEventStore persists one lumber event stream (arrivals or shipments).
type LumberEventStore interface {
	InsertLumberEvent(ctx context.Context, ev *models.LumberEvent) error
	LumberEventByID(ctx context.Context, id string) (*models.LumberEvent, error)
	FindLumberEventByDayKey(ctx context.Context, day time.Time, key models.LumberKey, counterpartID string) (*models.LumberEvent, error)
	UpdateLumberEventAmount(ctx context.Context, id string, amount int64) error
	DeleteLumberEvent(ctx context.Context, id string) error
	ListLumberEventsBetween(ctx context.Context, start, end time.Time) ([]models.LumberEvent, error)
}

// LogEventStore persists one log event stream (arrivals or shipments).
type LogEventStore interface {
	InsertLogEvent(ctx context.Context, ev *models.LogEvent) error
	LogEventByID(ctx context.Context, id string) (*models.LogEvent, error)
	FindLogEventByDayKey(ctx context.Context, day time.Time, designationID, counterpartID string) (*models.LogEvent, error)
	UpdateLogEventVolume(ctx context.Context, id string, volume decimal.Decimal) error
	DeleteLogEvent(ctx context.Context, id string) error
	ListLogEventsBetween(ctx context.Context, start, end time.Time) ([]models.LogEvent, error)
}

// DryingBatchStore persists drying batches.
type DryingBatchStore interface {
	InsertDryingBatch(ctx context.Context, batch *models.DryingBatch) error
	DryingBatchByID(ctx context.Context, id string) (*models.DryingBatch, error)
	ActiveDryingBatchByChamber(ctx context.Context, chamberID string) (*models.DryingBatch, error)
	ListActiveDryingBatches(ctx context.Context) ([]models.DryingBatch, error)
	UpdateDryingBatch(ctx context.Context, batch *models.DryingBatch) error
	DeleteDryingBatch(ctx context.Context, id string) error
}

// ThroughputStore persists workshop daily throughput rows.
type ThroughputStore interface {
	InsertThroughput(ctx context.Context, rec *models.WorkshopThroughput) error
	ThroughputByID(ctx context.Context, id string) (*models.WorkshopThroughput, error)
	FindThroughputByDayKey(ctx context.Context, workshopID string, day time.Time, gradeID, dimensionID string) (*models.WorkshopThroughput, error)
	UpdateThroughput(ctx context.Context, rec *models.WorkshopThroughput) error
	DeleteThroughput(ctx context.Context, id string) error
	ListThroughputBetween(ctx context.Context, workshopID string, start, end time.Time) ([]models.WorkshopThroughput, error)
}

// ReportStore archives daily warehouse reports.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report *models.DailyReport) error
}
