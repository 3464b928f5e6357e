package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
)

// LumberEventStore persists one lumber event stream. A day-truncated copy
// of the event date is stored alongside the timestamp so same-day merge
// matching is a plain equality filter.
type LumberEventStore struct {
	client *Client
	coll   string
}

// NewLumberArrivalStore returns the lumber arrivals stream.
func NewLumberArrivalStore(client *Client) *LumberEventStore {
	return &LumberEventStore{client: client, coll: collLumberArrivals}
}

// NewLumberShipmentStore returns the lumber shipments stream.
func NewLumberShipmentStore(client *Client) *LumberEventStore {
	return &LumberEventStore{client: client, coll: collLumberShipments}
}

type lumberEventDoc struct {
	ID            string    `bson:"_id,omitempty"`
	Date          time.Time `bson:"date"`
	Day           time.Time `bson:"day"`
	SpeciesID     string    `bson:"species_id"`
	GradeID       string    `bson:"grade_id"`
	DimensionID   string    `bson:"dimension_id"`
	ConditionID   string    `bson:"condition_id"`
	Amount        int64     `bson:"amount"`
	CounterpartID string    `bson:"counterpart_id,omitempty"`
	Transport     string    `bson:"transport,omitempty"`
}

func lumberDocFromModel(ev *models.LumberEvent) lumberEventDoc {
	return lumberEventDoc{
		ID:            ev.ID,
		Date:          ev.Date,
		Day:           models.Day(ev.Date),
		SpeciesID:     ev.SpeciesID,
		GradeID:       ev.GradeID,
		DimensionID:   ev.DimensionID,
		ConditionID:   ev.ConditionID,
		Amount:        ev.Amount,
		CounterpartID: ev.CounterpartID,
		Transport:     ev.Transport,
	}
}

func (d lumberEventDoc) toModel() models.LumberEvent {
	return models.LumberEvent{
		ID:   d.ID,
		Date: d.Date,
		LumberKey: models.LumberKey{
			SpeciesID:   d.SpeciesID,
			GradeID:     d.GradeID,
			DimensionID: d.DimensionID,
			ConditionID: d.ConditionID,
		},
		Amount:        d.Amount,
		CounterpartID: d.CounterpartID,
		Transport:     d.Transport,
	}
}

func (s *LumberEventStore) InsertLumberEvent(ctx context.Context, ev *models.LumberEvent) error {
	if ev.ID == "" {
		ev.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.client.collection(s.coll).InsertOne(ctx, lumberDocFromModel(ev)); err != nil {
		return fmt.Errorf("insert lumber event: %w", err)
	}
	return nil
}

func (s *LumberEventStore) LumberEventByID(ctx context.Context, id string) (*models.LumberEvent, error) {
	var doc lumberEventDoc
	err := s.client.collection(s.coll).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("lumber event %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find lumber event %s: %w", id, err)
	}
	out := doc.toModel()
	return &out, nil
}

func (s *LumberEventStore) FindLumberEventByDayKey(ctx context.Context, day time.Time, key models.LumberKey, counterpartID string) (*models.LumberEvent, error) {
	filter := bson.M{
		"day":            models.Day(day),
		"species_id":     key.SpeciesID,
		"grade_id":       key.GradeID,
		"dimension_id":   key.DimensionID,
		"condition_id":   key.ConditionID,
		"counterpart_id": counterpartID,
	}
	if counterpartID == "" {
		filter["counterpart_id"] = bson.M{"$in": bson.A{"", nil}}
	}
	var doc lumberEventDoc
	err := s.client.collection(s.coll).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("lumber event on %s", models.Day(day).Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("find same-day lumber event: %w", err)
	}
	out := doc.toModel()
	return &out, nil
}

func (s *LumberEventStore) UpdateLumberEventAmount(ctx context.Context, id string, amount int64) error {
	res, err := s.client.collection(s.coll).UpdateByID(ctx, id, bson.M{"$set": bson.M{"amount": amount}})
	if err != nil {
		return fmt.Errorf("update lumber event %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFoundf("lumber event %s", id)
	}
	return nil
}

func (s *LumberEventStore) DeleteLumberEvent(ctx context.Context, id string) error {
	res, err := s.client.collection(s.coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete lumber event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("lumber event %s", id)
	}
	return nil
}

func (s *LumberEventStore) ListLumberEventsBetween(ctx context.Context, start, end time.Time) ([]models.LumberEvent, error) {
	filter := bson.M{"day": bson.M{"$gte": models.Day(start), "$lte": models.Day(end)}}
	cursor, err := s.client.collection(s.coll).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list lumber events: %w", err)
	}
	var docs []lumberEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode lumber events: %w", err)
	}
	out := make([]models.LumberEvent, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

// LogEventStore persists one raw-log event stream.
type LogEventStore struct {
	client *Client
	coll   string
}

// NewLogArrivalStore returns the log arrivals stream.
func NewLogArrivalStore(client *Client) *LogEventStore {
	return &LogEventStore{client: client, coll: collLogArrivals}
}

// NewLogShipmentStore returns the log shipments stream.
func NewLogShipmentStore(client *Client) *LogEventStore {
	return &LogEventStore{client: client, coll: collLogShipments}
}

type logEventDoc struct {
	ID            string               `bson:"_id,omitempty"`
	Date          time.Time            `bson:"date"`
	Day           time.Time            `bson:"day"`
	DesignationID string               `bson:"designation_id"`
	Volume        primitive.Decimal128 `bson:"volume"`
	Pieces        int64                `bson:"pieces,omitempty"`
	Diameter      int                  `bson:"diameter,omitempty"`
	Length        float64              `bson:"length,omitempty"`
	CounterpartID string               `bson:"counterpart_id,omitempty"`
	Transport     string               `bson:"transport,omitempty"`
}

func logDocFromModel(ev *models.LogEvent) (logEventDoc, error) {
	volume, err := toDecimal128(ev.Volume)
	if err != nil {
		return logEventDoc{}, err
	}
	return logEventDoc{
		ID:            ev.ID,
		Date:          ev.Date,
		Day:           models.Day(ev.Date),
		DesignationID: ev.DesignationID,
		Volume:        volume,
		Pieces:        ev.Pieces,
		Diameter:      ev.Diameter,
		Length:        ev.Length,
		CounterpartID: ev.CounterpartID,
		Transport:     ev.Transport,
	}, nil
}

func (d logEventDoc) toModel() (models.LogEvent, error) {
	volume, err := fromDecimal128(d.Volume)
	if err != nil {
		return models.LogEvent{}, err
	}
	return models.LogEvent{
		ID:            d.ID,
		Date:          d.Date,
		DesignationID: d.DesignationID,
		Volume:        volume,
		Pieces:        d.Pieces,
		Diameter:      d.Diameter,
		Length:        d.Length,
		CounterpartID: d.CounterpartID,
		Transport:     d.Transport,
	}, nil
}

func (s *LogEventStore) InsertLogEvent(ctx context.Context, ev *models.LogEvent) error {
	if ev.ID == "" {
		ev.ID = primitive.NewObjectID().Hex()
	}
	doc, err := logDocFromModel(ev)
	if err != nil {
		return err
	}
	if _, err := s.client.collection(s.coll).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert log event: %w", err)
	}
	return nil
}

func (s *LogEventStore) LogEventByID(ctx context.Context, id string) (*models.LogEvent, error) {
	var doc logEventDoc
	err := s.client.collection(s.coll).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("log event %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find log event %s: %w", id, err)
	}
	out, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *LogEventStore) FindLogEventByDayKey(ctx context.Context, day time.Time, designationID, counterpartID string) (*models.LogEvent, error) {
	filter := bson.M{
		"day":            models.Day(day),
		"designation_id": designationID,
		"counterpart_id": counterpartID,
	}
	if counterpartID == "" {
		filter["counterpart_id"] = bson.M{"$in": bson.A{"", nil}}
	}
	var doc logEventDoc
	err := s.client.collection(s.coll).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("log event on %s", models.Day(day).Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("find same-day log event: %w", err)
	}
	out, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *LogEventStore) UpdateLogEventVolume(ctx context.Context, id string, volume decimal.Decimal) error {
	encoded, err := toDecimal128(volume)
	if err != nil {
		return err
	}
	res, err := s.client.collection(s.coll).UpdateByID(ctx, id, bson.M{"$set": bson.M{"volume": encoded}})
	if err != nil {
		return fmt.Errorf("update log event %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFoundf("log event %s", id)
	}
	return nil
}

func (s *LogEventStore) DeleteLogEvent(ctx context.Context, id string) error {
	res, err := s.client.collection(s.coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete log event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("log event %s", id)
	}
	return nil
}

func (s *LogEventStore) ListLogEventsBetween(ctx context.Context, start, end time.Time) ([]models.LogEvent, error) {
	filter := bson.M{"day": bson.M{"$gte": models.Day(start), "$lte": models.Day(end)}}
	cursor, err := s.client.collection(s.coll).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list log events: %w", err)
	}
	var docs []logEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode log events: %w", err)
	}
	out := make([]models.LogEvent, 0, len(docs))
	for _, doc := range docs {
		ev, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
