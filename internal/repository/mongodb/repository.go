// Package mongodb implements the repository contracts on MongoDB. Every
// stock adjustment and its triggering event write run inside one session
// transaction started through Client.WithinTx.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the stores.
const (
	collSpecies         = "species"
	collGrades          = "grades"
	collDimensions      = "dimensions"
	collConditions      = "conditions"
	collSuppliers       = "suppliers"
	collBuyers          = "buyers"
	collWorkshops       = "workshops"
	collChambers        = "dryer_chambers"
	collDesignations    = "designations"
	collLumberStock     = "lumber_stock"
	collLogStock        = "log_stock"
	collLumberArrivals  = "lumber_arrivals"
	collLumberShipments = "lumber_shipments"
	collLogArrivals     = "log_arrivals"
	collLogShipments    = "log_shipments"
	collDryingBatches   = "drying_batches"
	collThroughput      = "workshop_throughput"
	collDailyReports    = "daily_reports"
)

// Client wraps the MongoDB connection shared by the stores.
type Client struct {
	client *mongo.Client
	dbName string
}

// NewClient connects to MongoDB and verifies the connection.
func NewClient(ctx context.Context, uri string, dbName string) (*Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Client{client: client, dbName: dbName}, nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.dbName).Collection(name)
}

// WithinTx runs fn inside one session transaction. The context passed to fn
// carries the session, so every store call made through it joins the
// transaction, and MongoDB's document-level locking serializes writers that
// touch the same stock record.
func (c *Client) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
