// Package mongodb implements the store contracts on MongoDB, one collection
// per aggregate with nested fields stored as embedded documents.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

const (
	colProducts   = "products"
	colCategories = "categories"
	colCarts      = "carts"
	colWishlists  = "wishlists"
	colOrders     = "orders"
)

// New connects to uri and returns a Store on database dbName
func New(ctx context.Context, uri, dbName string, m *metrics.AppMetrics) (*store.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetRegistry(NewRegistry()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(dbName)
	if err := ensureIndexes(connectCtx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &store.Store{
		Products:   &ProductRepo{c: newCollection(database, colProducts, m)},
		Categories: &CategoryRepo{c: newCollection(database, colCategories, m)},
		Carts:      &CartRepo{c: newCollection(database, colCarts, m)},
		Wishlists:  &WishlistRepo{c: newCollection(database, colWishlists, m)},
		Orders:     &OrderRepo{c: newCollection(database, colOrders, m)},
		Close:      client.Disconnect,
	}, nil
}

func ensureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		colCategories: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

// collection pairs a mongo collection with query metrics
type collection struct {
	*mongo.Collection
	metrics *metrics.AppMetrics
}

func newCollection(database *mongo.Database, name string, m *metrics.AppMetrics) collection {
	return collection{Collection: database.Collection(name), metrics: m}
}

func (c collection) observe(ctx context.Context, op string, start time.Time, err error) {
	ok := err == nil || errors.Is(err, mongo.ErrNoDocuments)
	c.metrics.RecordStoreQuery(ctx, "mongodb", op, c.Name(), op, start, ok)
}

// findOne decodes the document with _id into out, returning notFound if absent
func (c collection) findOne(ctx context.Context, id string, out any, notFound error) error {
	start := time.Now()
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	c.observe(ctx, "findOne", start, err)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", c.Name(), err)
	}
	return nil
}

func (c collection) insert(ctx context.Context, doc any) error {
	start := time.Now()
	_, err := c.InsertOne(ctx, doc)
	c.observe(ctx, "insertOne", start, err)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", c.Name(), err)
	}
	return nil
}

// replaceVersioned swaps the document if its stored version still matches
// version. A miss is resolved to notFound or models.ErrConflict.
func (c collection) replaceVersioned(ctx context.Context, id string, version int64, doc any, notFound error) error {
	start := time.Now()
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id, "version": version}, doc)
	c.observe(ctx, "replaceOne", start, err)
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.Name(), err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return c.missReason(ctx, id, notFound)
}

func (c collection) missReason(ctx context.Context, id string, notFound error) error {
	start := time.Now()
	n, err := c.CountDocuments(ctx, bson.M{"_id": id})
	c.observe(ctx, "countDocuments", start, err)
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", c.Name(), err)
	}
	if n == 0 {
		return notFound
	}
	return models.ErrConflict
}

func (c collection) count(ctx context.Context, filter any) (int64, error) {
	start := time.Now()
	n, err := c.CountDocuments(ctx, filter)
	c.observe(ctx, "countDocuments", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.Name(), err)
	}
	return n, nil
}

func (c collection) findAll(ctx context.Context, filter any, opts *options.FindOptions, out any) error {
	start := time.Now()
	cur, err := c.Find(ctx, filter, opts)
	c.observe(ctx, "find", start, err)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", c.Name(), err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.Name(), err)
	}
	return nil
}

func (c collection) deleteOne(ctx context.Context, id string, notFound error) error {
	start := time.Now()
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	c.observe(ctx, "deleteOne", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", c.Name(), err)
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

// pageOptions returns find options for a 1-indexed page
func pageOptions(page, limit int, sort bson.D) *options.FindOptions {
	page, limit = store.NormalizePage(page, limit)
	return options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}
