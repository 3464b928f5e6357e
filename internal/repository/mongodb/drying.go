package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
)

// DryingStore persists drying batches.
type DryingStore struct {
	client *Client
}

func NewDryingStore(client *Client) *DryingStore {
	return &DryingStore{client: client}
}

func (s *DryingStore) InsertDryingBatch(ctx context.Context, batch *models.DryingBatch) error {
	if batch.ID == "" {
		batch.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.client.collection(collDryingBatches).InsertOne(ctx, batch); err != nil {
		return fmt.Errorf("insert drying batch: %w", err)
	}
	return nil
}

func (s *DryingStore) DryingBatchByID(ctx context.Context, id string) (*models.DryingBatch, error) {
	var batch models.DryingBatch
	err := s.client.collection(collDryingBatches).FindOne(ctx, bson.M{"_id": id}).Decode(&batch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("drying batch %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find drying batch %s: %w", id, err)
	}
	return &batch, nil
}

func (s *DryingStore) ActiveDryingBatchByChamber(ctx context.Context, chamberID string) (*models.DryingBatch, error) {
	filter := bson.M{"chamber_id": chamberID, "is_drying": true}
	var batch models.DryingBatch
	err := s.client.collection(collDryingBatches).FindOne(ctx, filter).Decode(&batch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("active drying batch in chamber %s", chamberID)
	}
	if err != nil {
		return nil, fmt.Errorf("find active drying batch: %w", err)
	}
	return &batch, nil
}

func (s *DryingStore) ListActiveDryingBatches(ctx context.Context) ([]models.DryingBatch, error) {
	cursor, err := s.client.collection(collDryingBatches).Find(ctx, bson.M{"is_drying": true})
	if err != nil {
		return nil, fmt.Errorf("list active drying batches: %w", err)
	}
	var batches []models.DryingBatch
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, fmt.Errorf("decode drying batches: %w", err)
	}
	return batches, nil
}

func (s *DryingStore) UpdateDryingBatch(ctx context.Context, batch *models.DryingBatch) error {
	res, err := s.client.collection(collDryingBatches).ReplaceOne(ctx, bson.M{"_id": batch.ID}, batch)
	if err != nil {
		return fmt.Errorf("update drying batch %s: %w", batch.ID, err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFoundf("drying batch %s", batch.ID)
	}
	return nil
}

func (s *DryingStore) DeleteDryingBatch(ctx context.Context, id string) error {
	res, err := s.client.collection(collDryingBatches).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete drying batch %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("drying batch %s", id)
	}
	return nil
}
