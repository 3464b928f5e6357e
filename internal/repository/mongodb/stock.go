package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/repository"
)

// StockStore persists both stock aggregate streams.
type StockStore struct {
	client *Client
}

// NewStockStore wires the stock stores over the shared client.
func NewStockStore(client *Client) *StockStore {
	return &StockStore{client: client}
}

func (s *StockStore) FindLumberStock(ctx context.Context, key models.LumberKey) (*models.LumberStock, error) {
	filter := bson.M{
		"species_id":   key.SpeciesID,
		"grade_id":     key.GradeID,
		"dimension_id": key.DimensionID,
		"condition_id": key.ConditionID,
	}
	var out models.LumberStock
	err := s.client.collection(collLumberStock).FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("lumber stock %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("find lumber stock: %w", err)
	}
	return &out, nil
}

func (s *StockStore) SaveLumberStock(ctx context.Context, rec *models.LumberStock) error {
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.client.collection(collLumberStock).ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
		return fmt.Errorf("save lumber stock %s: %w", rec.ID, err)
	}
	return nil
}

func (s *StockStore) DeleteLumberStock(ctx context.Context, id string) error {
	res, err := s.client.collection(collLumberStock).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete lumber stock %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("lumber stock record %s", id)
	}
	return nil
}

func (s *StockStore) ListLumberStock(ctx context.Context, filter repository.LumberStockFilter) ([]models.LumberStock, error) {
	query := bson.M{}
	if filter.ConditionID != "" {
		query["condition_id"] = filter.ConditionID
	}
	if filter.SpeciesID != "" {
		query["species_id"] = filter.SpeciesID
	}
	cursor, err := s.client.collection(collLumberStock).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list lumber stock: %w", err)
	}
	var out []models.LumberStock
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode lumber stock: %w", err)
	}
	return out, nil
}

type logStockDoc struct {
	ID            string               `bson:"_id,omitempty"`
	DesignationID string               `bson:"designation_id"`
	Volume        primitive.Decimal128 `bson:"volume"`
}

func (d logStockDoc) toModel() (*models.LogStock, error) {
	volume, err := fromDecimal128(d.Volume)
	if err != nil {
		return nil, err
	}
	return &models.LogStock{ID: d.ID, DesignationID: d.DesignationID, Volume: volume}, nil
}

func (s *StockStore) FindLogStock(ctx context.Context, designationID string) (*models.LogStock, error) {
	var doc logStockDoc
	err := s.client.collection(collLogStock).FindOne(ctx, bson.M{"designation_id": designationID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("log stock for designation %s", designationID)
	}
	if err != nil {
		return nil, fmt.Errorf("find log stock: %w", err)
	}
	return doc.toModel()
}

func (s *StockStore) SaveLogStock(ctx context.Context, rec *models.LogStock) error {
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	volume, err := toDecimal128(rec.Volume)
	if err != nil {
		return err
	}
	doc := logStockDoc{ID: rec.ID, DesignationID: rec.DesignationID, Volume: volume}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.client.collection(collLogStock).ReplaceOne(ctx, bson.M{"_id": rec.ID}, doc, opts); err != nil {
		return fmt.Errorf("save log stock %s: %w", rec.ID, err)
	}
	return nil
}

func (s *StockStore) DeleteLogStock(ctx context.Context, id string) error {
	res, err := s.client.collection(collLogStock).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete log stock %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("log stock record %s", id)
	}
	return nil
}

func (s *StockStore) ListLogStock(ctx context.Context) ([]models.LogStock, error) {
	cursor, err := s.client.collection(collLogStock).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list log stock: %w", err)
	}
	var docs []logStockDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode log stock: %w", err)
	}
	out := make([]models.LogStock, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}
