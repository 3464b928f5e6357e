// Package memory provides an in-memory implementation of the repository
// contracts. It backs the service test suites and local development runs.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository"
)

// Store keeps every collection in maps guarded by a single mutex. WithinTx
// serializes transactions and snapshots every collection on entry, so a
// failed transaction restores the store to its pre-transaction state.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	species      map[string]models.WoodSpecies
	grades       map[string]models.LumberGrade
	dimensions   map[string]models.Dimension
	conditions   map[string]models.Condition
	suppliers    map[string]models.Supplier
	buyers       map[string]models.Buyer
	workshops    map[string]models.Workshop
	chambers     map[string]models.DryerChamber
	designations map[string]models.Designation

	lumberStock map[string]models.LumberStock
	logStock    map[string]models.LogStock

	lumberArrivals  map[string]models.LumberEvent
	lumberShipments map[string]models.LumberEvent
	logArrivals     map[string]models.LogEvent
	logShipments    map[string]models.LogEvent

	batches    map[string]models.DryingBatch
	throughput map[string]models.WorkshopThroughput
	reports    []models.DailyReport

	nextID int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		species:         map[string]models.WoodSpecies{},
		grades:          map[string]models.LumberGrade{},
		dimensions:      map[string]models.Dimension{},
		conditions:      map[string]models.Condition{},
		suppliers:       map[string]models.Supplier{},
		buyers:          map[string]models.Buyer{},
		workshops:       map[string]models.Workshop{},
		chambers:        map[string]models.DryerChamber{},
		designations:    map[string]models.Designation{},
		lumberStock:     map[string]models.LumberStock{},
		logStock:        map[string]models.LogStock{},
		lumberArrivals:  map[string]models.LumberEvent{},
		lumberShipments: map[string]models.LumberEvent{},
		logArrivals:     map[string]models.LogEvent{},
		logShipments:    map[string]models.LogEvent{},
		batches:         map[string]models.DryingBatch{},
		throughput:      map[string]models.WorkshopThroughput{},
	}
}

func (s *Store) id() string {
	s.nextID++
	return fmt.Sprintf("mem-%d", s.nextID)
}

// snapshot captures every mutable collection. Restores refill the existing
// maps in place because the event stream views hold direct map references.
type snapshot struct {
	species      map[string]models.WoodSpecies
	grades       map[string]models.LumberGrade
	dimensions   map[string]models.Dimension
	conditions   map[string]models.Condition
	suppliers    map[string]models.Supplier
	buyers       map[string]models.Buyer
	workshops    map[string]models.Workshop
	chambers     map[string]models.DryerChamber
	designations map[string]models.Designation

	lumberStock map[string]models.LumberStock
	logStock    map[string]models.LogStock

	lumberArrivals  map[string]models.LumberEvent
	lumberShipments map[string]models.LumberEvent
	logArrivals     map[string]models.LogEvent
	logShipments    map[string]models.LogEvent

	batches    map[string]models.DryingBatch
	throughput map[string]models.WorkshopThroughput
	reports    []models.DailyReport

	nextID int
}

func (s *Store) snapshot() *snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := &snapshot{
		species:         maps.Clone(s.species),
		grades:          maps.Clone(s.grades),
		dimensions:      maps.Clone(s.dimensions),
		conditions:      maps.Clone(s.conditions),
		suppliers:       maps.Clone(s.suppliers),
		buyers:          maps.Clone(s.buyers),
		workshops:       maps.Clone(s.workshops),
		chambers:        maps.Clone(s.chambers),
		designations:    maps.Clone(s.designations),
		lumberStock:     maps.Clone(s.lumberStock),
		logStock:        maps.Clone(s.logStock),
		lumberArrivals:  maps.Clone(s.lumberArrivals),
		lumberShipments: maps.Clone(s.lumberShipments),
		logArrivals:     maps.Clone(s.logArrivals),
		logShipments:    maps.Clone(s.logShipments),
		batches:         maps.Clone(s.batches),
		throughput:      maps.Clone(s.throughput),
		reports:         make([]models.DailyReport, len(s.reports)),
		nextID:          s.nextID,
	}
	copy(sn.reports, s.reports)
	return sn
}

func restoreMap[K comparable, V any](dst, src map[K]V) {
	clear(dst)
	maps.Copy(dst, src)
}

func (s *Store) restore(sn *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	restoreMap(s.species, sn.species)
	restoreMap(s.grades, sn.grades)
	restoreMap(s.dimensions, sn.dimensions)
	restoreMap(s.conditions, sn.conditions)
	restoreMap(s.suppliers, sn.suppliers)
	restoreMap(s.buyers, sn.buyers)
	restoreMap(s.workshops, sn.workshops)
	restoreMap(s.chambers, sn.chambers)
	restoreMap(s.designations, sn.designations)
	restoreMap(s.lumberStock, sn.lumberStock)
	restoreMap(s.logStock, sn.logStock)
	restoreMap(s.lumberArrivals, sn.lumberArrivals)
	restoreMap(s.lumberShipments, sn.lumberShipments)
	restoreMap(s.logArrivals, sn.logArrivals)
	restoreMap(s.logShipments, sn.logShipments)
	restoreMap(s.batches, sn.batches)
	restoreMap(s.throughput, sn.throughput)
	s.reports = sn.reports
	s.nextID = sn.nextID
}

// WithinTx serializes transactions under txMu, snapshots every collection
// and rolls the store back when fn returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	sn := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(sn)
		return err
	}
	return nil
}

// Seed helpers used by tests and local bootstrapping.

// PutSpecies stores a species record, assigning an id when empty.
func (s *Store) PutSpecies(sp models.WoodSpecies) models.WoodSpecies {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp.ID == "" {
		sp.ID = s.id()
	}
	s.species[sp.ID] = sp
	return sp
}

// PutGrade stores a grade record, assigning an id when empty.
func (s *Store) PutGrade(g models.LumberGrade) models.LumberGrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = s.id()
	}
	s.grades[g.ID] = g
	return g
}

// PutDimension stores a dimension record, assigning an id when empty.
func (s *Store) PutDimension(d models.Dimension) models.Dimension {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = s.id()
	}
	s.dimensions[d.ID] = d
	return d
}

// PutCondition stores a condition record, assigning an id when empty.
func (s *Store) PutCondition(c models.Condition) models.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.id()
	}
	s.conditions[c.ID] = c
	return c
}

// PutSupplier stores a supplier record, assigning an id when empty.
func (s *Store) PutSupplier(sp models.Supplier) models.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp.ID == "" {
		sp.ID = s.id()
	}
	s.suppliers[sp.ID] = sp
	return sp
}

// PutBuyer stores a buyer record, assigning an id when empty.
func (s *Store) PutBuyer(b models.Buyer) models.Buyer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = s.id()
	}
	s.buyers[b.ID] = b
	return b
}

// PutWorkshop stores a workshop record, assigning an id when empty.
func (s *Store) PutWorkshop(w models.Workshop) models.Workshop {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = s.id()
	}
	s.workshops[w.ID] = w
	return w
}

// PutChamber stores a chamber record, assigning an id when empty.
func (s *Store) PutChamber(c models.DryerChamber) models.DryerChamber {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.id()
	}
	s.chambers[c.ID] = c
	return c
}

// PutDesignation stores a designation record, assigning an id when empty.
func (s *Store) PutDesignation(d models.Designation) models.Designation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = s.id()
	}
	s.designations[d.ID] = d
	return d
}

// ReferenceReader implementation.

func (s *Store) SpeciesByID(ctx context.Context, id string) (*models.WoodSpecies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.species[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("species %s", id)
}

func (s *Store) GradeByID(ctx context.Context, id string) (*models.LumberGrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.grades[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("grade %s", id)
}

func (s *Store) DimensionByID(ctx context.Context, id string) (*models.Dimension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.dimensions[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("dimension %s", id)
}

func (s *Store) ConditionByID(ctx context.Context, id string) (*models.Condition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.conditions[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("condition %s", id)
}

func (s *Store) ConditionByName(ctx context.Context, name string) (*models.Condition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.conditions {
		if v.Name == name {
			v := v
			return &v, nil
		}
	}
	return nil, errs.MissingReferencef("condition %q", name)
}

func (s *Store) SupplierByID(ctx context.Context, id string) (*models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.suppliers[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("supplier %s", id)
}

func (s *Store) BuyerByID(ctx context.Context, id string) (*models.Buyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.buyers[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("buyer %s", id)
}

func (s *Store) WorkshopByID(ctx context.Context, id string) (*models.Workshop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.workshops[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("workshop %s", id)
}

// ChamberStore implementation.

func (s *Store) ChamberByID(ctx context.Context, id string) (*models.DryerChamber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.chambers[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("dryer chamber %s", id)
}

func (s *Store) SaveChamber(ctx context.Context, chamber *models.DryerChamber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chamber.ID == "" {
		chamber.ID = s.id()
	}
	s.chambers[chamber.ID] = *chamber
	return nil
}

// DesignationStore implementation.

func (s *Store) DesignationByID(ctx context.Context, id string) (*models.Designation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.designations[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("designation %s", id)
}

func (s *Store) DesignationsBySpeciesLength(ctx context.Context, speciesID string, length float64) ([]models.Designation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Designation
	for _, d := range s.designations {
		if d.SpeciesID == speciesID && d.Length == length {
			out = append(out, d)
		}
	}
	return out, nil
}

// LumberStockStore implementation.

func (s *Store) FindLumberStock(ctx context.Context, key models.LumberKey) (*models.LumberStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.lumberStock {
		if rec.LumberKey == key {
			rec := rec
			return &rec, nil
		}
	}
	return nil, errs.NotFoundf("lumber stock %s", key)
}

func (s *Store) SaveLumberStock(ctx context.Context, rec *models.LumberStock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = s.id()
	}
	s.lumberStock[rec.ID] = *rec
	return nil
}

func (s *Store) DeleteLumberStock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lumberStock[id]; !ok {
		return errs.NotFoundf("lumber stock record %s", id)
	}
	delete(s.lumberStock, id)
	return nil
}

func (s *Store) ListLumberStock(ctx context.Context, filter repository.LumberStockFilter) ([]models.LumberStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LumberStock
	for _, rec := range s.lumberStock {
		if filter.ConditionID != "" && rec.ConditionID != filter.ConditionID {
			continue
		}
		if filter.SpeciesID != "" && rec.SpeciesID != filter.SpeciesID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// LogStockStore implementation.

func (s *Store) FindLogStock(ctx context.Context, designationID string) (*models.LogStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.logStock {
		if rec.DesignationID == designationID {
			rec := rec
			return &rec, nil
		}
	}
	return nil, errs.NotFoundf("log stock for designation %s", designationID)
}

func (s *Store) SaveLogStock(ctx context.Context, rec *models.LogStock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = s.id()
	}
	s.logStock[rec.ID] = *rec
	return nil
}

func (s *Store) DeleteLogStock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logStock[id]; !ok {
		return errs.NotFoundf("log stock record %s", id)
	}
	delete(s.logStock, id)
	return nil
}

func (s *Store) ListLogStock(ctx context.Context) ([]models.LogStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LogStock, 0, len(s.logStock))
	for _, rec := range s.logStock {
		out = append(out, rec)
	}
	return out, nil
}

// DryingBatchStore implementation.

func (s *Store) InsertDryingBatch(ctx context.Context, batch *models.DryingBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if batch.ID == "" {
		batch.ID = s.id()
	}
	s.batches[batch.ID] = *batch
	return nil
}

func (s *Store) DryingBatchByID(ctx context.Context, id string) (*models.DryingBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.batches[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("drying batch %s", id)
}

func (s *Store) ActiveDryingBatchByChamber(ctx context.Context, chamberID string) (*models.DryingBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.batches {
		if b.ChamberID == chamberID && b.IsDrying {
			b := b
			return &b, nil
		}
	}
	return nil, errs.NotFoundf("active drying batch for chamber %s", chamberID)
}

func (s *Store) ListActiveDryingBatches(ctx context.Context) ([]models.DryingBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DryingBatch
	for _, b := range s.batches {
		if b.IsDrying {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) UpdateDryingBatch(ctx context.Context, batch *models.DryingBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[batch.ID]; !ok {
		return errs.NotFoundf("drying batch %s", batch.ID)
	}
	s.batches[batch.ID] = *batch
	return nil
}

func (s *Store) DeleteDryingBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[id]; !ok {
		return errs.NotFoundf("drying batch %s", id)
	}
	delete(s.batches, id)
	return nil
}

// ThroughputStore implementation.

func (s *Store) InsertThroughput(ctx context.Context, rec *models.WorkshopThroughput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = s.id()
	}
	s.throughput[rec.ID] = *rec
	return nil
}

func (s *Store) ThroughputByID(ctx context.Context, id string) (*models.WorkshopThroughput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.throughput[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("throughput record %s", id)
}

func (s *Store) FindThroughputByDayKey(ctx context.Context, workshopID string, day time.Time, gradeID, dimensionID string) (*models.WorkshopThroughput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day = models.Day(day)
	for _, rec := range s.throughput {
		if rec.WorkshopID == workshopID && models.Day(rec.Date).Equal(day) &&
			rec.GradeID == gradeID && rec.DimensionID == dimensionID {
			rec := rec
			return &rec, nil
		}
	}
	return nil, errs.NotFoundf("throughput for workshop %s on %s", workshopID, day.Format("2006-01-02"))
}

func (s *Store) UpdateThroughput(ctx context.Context, rec *models.WorkshopThroughput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.throughput[rec.ID]; !ok {
		return errs.NotFoundf("throughput record %s", rec.ID)
	}
	s.throughput[rec.ID] = *rec
	return nil
}

func (s *Store) DeleteThroughput(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.throughput[id]; !ok {
		return errs.NotFoundf("throughput record %s", id)
	}
	delete(s.throughput, id)
	return nil
}

func (s *Store) ListThroughputBetween(ctx context.Context, workshopID string, start, end time.Time) ([]models.WorkshopThroughput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WorkshopThroughput
	for _, rec := range s.throughput {
		if workshopID != "" && rec.WorkshopID != workshopID {
			continue
		}
		day := models.Day(rec.Date)
		if day.Before(models.Day(start)) || day.After(models.Day(end)) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReportStore implementation.

func (s *Store) SaveDailyReport(ctx context.Context, report *models.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = s.id()
	}
	s.reports = append(s.reports, *report)
	return nil
}

// Reports returns the archived daily reports, oldest first.
func (s *Store) Reports() []models.DailyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailyReport, len(s.reports))
	copy(out, s.reports)
	return out
}
