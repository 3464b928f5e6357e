package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
)

// WorkshopStore persists workshop throughput rows.
type WorkshopStore struct {
	client *Client
}

func NewWorkshopStore(client *Client) *WorkshopStore {
	return &WorkshopStore{client: client}
}

type throughputDoc struct {
	ID               string               `bson:"_id,omitempty"`
	WorkshopID       string               `bson:"workshop_id"`
	Date             time.Time            `bson:"date"`
	Day              time.Time            `bson:"day"`
	SpeciesID        string               `bson:"species_id"`
	GradeID          string               `bson:"grade_id"`
	DimensionID      string               `bson:"dimension_id"`
	Amount           int64                `bson:"amount"`
	LogDesignationID string               `bson:"log_designation_id,omitempty"`
	LogVolume        primitive.Decimal128 `bson:"log_volume"`
}

func throughputDocFromModel(rec *models.WorkshopThroughput) (throughputDoc, error) {
	logVolume, err := toDecimal128(rec.LogVolume)
	if err != nil {
		return throughputDoc{}, err
	}
	return throughputDoc{
		ID:               rec.ID,
		WorkshopID:       rec.WorkshopID,
		Date:             rec.Date,
		Day:              models.Day(rec.Date),
		SpeciesID:        rec.SpeciesID,
		GradeID:          rec.GradeID,
		DimensionID:      rec.DimensionID,
		Amount:           rec.Amount,
		LogDesignationID: rec.LogDesignationID,
		LogVolume:        logVolume,
	}, nil
}

func (d throughputDoc) toModel() (models.WorkshopThroughput, error) {
	logVolume, err := fromDecimal128(d.LogVolume)
	if err != nil {
		return models.WorkshopThroughput{}, err
	}
	return models.WorkshopThroughput{
		ID:               d.ID,
		WorkshopID:       d.WorkshopID,
		Date:             d.Date,
		SpeciesID:        d.SpeciesID,
		GradeID:          d.GradeID,
		DimensionID:      d.DimensionID,
		Amount:           d.Amount,
		LogDesignationID: d.LogDesignationID,
		LogVolume:        logVolume,
	}, nil
}

func (s *WorkshopStore) InsertThroughput(ctx context.Context, rec *models.WorkshopThroughput) error {
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	doc, err := throughputDocFromModel(rec)
	if err != nil {
		return err
	}
	if _, err := s.client.collection(collThroughput).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert throughput: %w", err)
	}
	return nil
}

func (s *WorkshopStore) ThroughputByID(ctx context.Context, id string) (*models.WorkshopThroughput, error) {
	var doc throughputDoc
	err := s.client.collection(collThroughput).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("throughput record %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find throughput record %s: %w", id, err)
	}
	out, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WorkshopStore) FindThroughputByDayKey(ctx context.Context, workshopID string, day time.Time, gradeID, dimensionID string) (*models.WorkshopThroughput, error) {
	filter := bson.M{
		"workshop_id":  workshopID,
		"day":          models.Day(day),
		"grade_id":     gradeID,
		"dimension_id": dimensionID,
	}
	var doc throughputDoc
	err := s.client.collection(collThroughput).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("throughput on %s", models.Day(day).Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("find same-day throughput: %w", err)
	}
	out, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WorkshopStore) UpdateThroughput(ctx context.Context, rec *models.WorkshopThroughput) error {
	doc, err := throughputDocFromModel(rec)
	if err != nil {
		return err
	}
	res, err := s.client.collection(collThroughput).ReplaceOne(ctx, bson.M{"_id": rec.ID}, doc)
	if err != nil {
		return fmt.Errorf("update throughput %s: %w", rec.ID, err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFoundf("throughput record %s", rec.ID)
	}
	return nil
}

func (s *WorkshopStore) DeleteThroughput(ctx context.Context, id string) error {
	res, err := s.client.collection(collThroughput).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete throughput %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("throughput record %s", id)
	}
	return nil
}

func (s *WorkshopStore) ListThroughputBetween(ctx context.Context, workshopID string, start, end time.Time) ([]models.WorkshopThroughput, error) {
	filter := bson.M{
		"workshop_id": workshopID,
		"day":         bson.M{"$gte": models.Day(start), "$lte": models.Day(end)},
	}
	cursor, err := s.client.collection(collThroughput).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list throughput: %w", err)
	}
	var docs []throughputDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode throughput: %w", err)
	}
	out := make([]models.WorkshopThroughput, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
