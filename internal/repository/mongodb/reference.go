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
)

// ReferenceStore provides the read-only reference lookups plus the chamber
// and designation stores.
type ReferenceStore struct {
	client *Client
}

// NewReferenceStore wires the reference lookups over the shared client.
func NewReferenceStore(client *Client) *ReferenceStore {
	return &ReferenceStore{client: client}
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id, what string) (*T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.NotFoundf("%s %s", what, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", what, id, err)
	}
	return &out, nil
}

func (r *ReferenceStore) SpeciesByID(ctx context.Context, id string) (*models.WoodSpecies, error) {
	return findByID[models.WoodSpecies](ctx, r.client.collection(collSpecies), id, "species")
}

func (r *ReferenceStore) GradeByID(ctx context.Context, id string) (*models.LumberGrade, error) {
	return findByID[models.LumberGrade](ctx, r.client.collection(collGrades), id, "grade")
}

func (r *ReferenceStore) DimensionByID(ctx context.Context, id string) (*models.Dimension, error) {
	return findByID[models.Dimension](ctx, r.client.collection(collDimensions), id, "dimension")
}

func (r *ReferenceStore) ConditionByID(ctx context.Context, id string) (*models.Condition, error) {
	return findByID[models.Condition](ctx, r.client.collection(collConditions), id, "condition")
}

// ConditionByName resolves the fixed wet/dry condition records; absence is a
// missing-reference configuration error rather than a plain not-found.
func (r *ReferenceStore) ConditionByName(ctx context.Context, name string) (*models.Condition, error) {
	var out models.Condition
	err := r.client.collection(collConditions).FindOne(ctx, bson.M{"name": name}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.MissingReferencef("condition %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("find condition %q: %w", name, err)
	}
	return &out, nil
}

func (r *ReferenceStore) SupplierByID(ctx context.Context, id string) (*models.Supplier, error) {
	return findByID[models.Supplier](ctx, r.client.collection(collSuppliers), id, "supplier")
}

func (r *ReferenceStore) BuyerByID(ctx context.Context, id string) (*models.Buyer, error) {
	return findByID[models.Buyer](ctx, r.client.collection(collBuyers), id, "buyer")
}

type workshopPriceDoc struct {
	GradeID     string               `bson:"grade_id"`
	DimensionID string               `bson:"dimension_id"`
	Price       primitive.Decimal128 `bson:"price"`
}

type workshopDoc struct {
	ID     string             `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Prices []workshopPriceDoc `bson:"prices"`
}

func (r *ReferenceStore) WorkshopByID(ctx context.Context, id string) (*models.Workshop, error) {
	doc, err := findByID[workshopDoc](ctx, r.client.collection(collWorkshops), id, "workshop")
	if err != nil {
		return nil, err
	}

	out := &models.Workshop{ID: doc.ID, Name: doc.Name}
	for _, p := range doc.Prices {
		price, err := fromDecimal128(p.Price)
		if err != nil {
			return nil, err
		}
		out.Prices = append(out.Prices, models.WorkshopPrice{
			GradeID:     p.GradeID,
			DimensionID: p.DimensionID,
			Price:       price,
		})
	}
	return out, nil
}

func (r *ReferenceStore) ChamberByID(ctx context.Context, id string) (*models.DryerChamber, error) {
	return findByID[models.DryerChamber](ctx, r.client.collection(collChambers), id, "dryer chamber")
}

// SaveChamber persists the chamber, assigning an id when absent. Only the
// iteration counter changes through this subsystem.
func (r *ReferenceStore) SaveChamber(ctx context.Context, chamber *models.DryerChamber) error {
	if chamber.ID == "" {
		chamber.ID = primitive.NewObjectID().Hex()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.client.collection(collChambers).ReplaceOne(ctx, bson.M{"_id": chamber.ID}, chamber, opts); err != nil {
		return fmt.Errorf("save chamber %s: %w", chamber.ID, err)
	}
	return nil
}

func (r *ReferenceStore) DesignationByID(ctx context.Context, id string) (*models.Designation, error) {
	return findByID[models.Designation](ctx, r.client.collection(collDesignations), id, "designation")
}

// DesignationsBySpeciesLength lists designation candidates; band filtering
// is done by the resolver.
func (r *ReferenceStore) DesignationsBySpeciesLength(ctx context.Context, speciesID string, length float64) ([]models.Designation, error) {
	cursor, err := r.client.collection(collDesignations).Find(ctx, bson.M{"species_id": speciesID, "length": length})
	if err != nil {
		return nil, fmt.Errorf("list designations: %w", err)
	}
	var out []models.Designation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode designations: %w", err)
	}
	return out, nil
}
