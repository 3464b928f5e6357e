package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository"
)

// LumberArrivals returns the lumber arrivals event stream.
func (s *Store) LumberArrivals() repository.LumberEventStore {
	return &lumberEvents{s: s, events: s.lumberArrivals}
}

// LumberShipments returns the lumber shipments event stream.
func (s *Store) LumberShipments() repository.LumberEventStore {
	return &lumberEvents{s: s, events: s.lumberShipments}
}

// LogArrivals returns the log arrivals event stream.
func (s *Store) LogArrivals() repository.LogEventStore {
	return &logEvents{s: s, events: s.logArrivals}
}

// LogShipments returns the log shipments event stream.
func (s *Store) LogShipments() repository.LogEventStore {
	return &logEvents{s: s, events: s.logShipments}
}

type lumberEvents struct {
	s      *Store
	events map[string]models.LumberEvent
}

func (l *lumberEvents) InsertLumberEvent(ctx context.Context, ev *models.LumberEvent) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = l.s.id()
	}
	l.events[ev.ID] = *ev
	return nil
}

func (l *lumberEvents) LumberEventByID(ctx context.Context, id string) (*models.LumberEvent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if v, ok := l.events[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("lumber event %s", id)
}

func (l *lumberEvents) FindLumberEventByDayKey(ctx context.Context, day time.Time, key models.LumberKey, counterpartID string) (*models.LumberEvent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	day = models.Day(day)
	for _, ev := range l.events {
		if models.Day(ev.Date).Equal(day) && ev.LumberKey == key && ev.CounterpartID == counterpartID {
			ev := ev
			return &ev, nil
		}
	}
	return nil, errs.NotFoundf("lumber event on %s", day.Format("2006-01-02"))
}

func (l *lumberEvents) UpdateLumberEventAmount(ctx context.Context, id string, amount int64) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	ev, ok := l.events[id]
	if !ok {
		return errs.NotFoundf("lumber event %s", id)
	}
	ev.Amount = amount
	l.events[id] = ev
	return nil
}

func (l *lumberEvents) DeleteLumberEvent(ctx context.Context, id string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.events[id]; !ok {
		return errs.NotFoundf("lumber event %s", id)
	}
	delete(l.events, id)
	return nil
}

func (l *lumberEvents) ListLumberEventsBetween(ctx context.Context, start, end time.Time) ([]models.LumberEvent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	var out []models.LumberEvent
	for _, ev := range l.events {
		day := models.Day(ev.Date)
		if day.Before(models.Day(start)) || day.After(models.Day(end)) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type logEvents struct {
	s      *Store
	events map[string]models.LogEvent
}

func (l *logEvents) InsertLogEvent(ctx context.Context, ev *models.LogEvent) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = l.s.id()
	}
	l.events[ev.ID] = *ev
	return nil
}

func (l *logEvents) LogEventByID(ctx context.Context, id string) (*models.LogEvent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if v, ok := l.events[id]; ok {
		return &v, nil
	}
	return nil, errs.NotFoundf("log event %s", id)
}

func (l *logEvents) FindLogEventByDayKey(ctx context.Context, day time.Time, designationID, counterpartID string) (*models.LogEvent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	day = models.Day(day)
	for _, ev := range l.events {
		if models.Day(ev.Date).Equal(day) && ev.DesignationID == designationID && ev.CounterpartID == counterpartID {
			ev := ev
			return &ev, nil
		}
	}
	return nil, errs.NotFoundf("log event on %s", day.Format("2006-01-02"))
}

func (l *logEvents) UpdateLogEventVolume(ctx context.Context, id string, volume decimal.Decimal) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	ev, ok := l.events[id]
	if !ok {
		return errs.NotFoundf("log event %s", id)
	}
	ev.Volume = volume
	l.events[id] = ev
	return nil
}

func (l *logEvents) DeleteLogEvent(ctx context.Context, id string) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if _, ok := l.events[id]; !ok {
		return errs.NotFoundf("log event %s", id)
	}
	delete(l.events, id)
	return nil
}

func (l *logEvents) ListLogEventsBetween(ctx context.Context, start, end time.Time) ([]models.LogEvent, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	var out []models.LogEvent
	for _, ev := range l.events {
		day := models.Day(ev.Date)
		if day.Before(models.Day(start)) || day.After(models.Day(end)) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
