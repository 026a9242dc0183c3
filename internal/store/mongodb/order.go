package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// OrderRepo stores orders in the orders collection
type OrderRepo struct {
	c collection
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	o.Version = 1
	return r.c.insert(ctx, o)
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.c.findOne(ctx, id, &o, models.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *models.Order) error {
	next := o.Clone()
	next.Version++
	if err := r.c.replaceVersioned(ctx, o.ID, o.Version, next, models.ErrOrderNotFound); err != nil {
		return err
	}
	o.Version = next.Version
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	opts := options.Find().SetSort(newestFirst)
	if err := r.c.findAll(ctx, bson.M{"userId": userID}, opts, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepo) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	total, err := r.c.count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	orders := []models.Order{}
	if err := r.c.findAll(ctx, q, pageOptions(f.Page, f.Limit, newestFirst), &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// summaryPipeline groups orders by status with paid counts and paid revenue
var summaryPipeline = mongo.Pipeline{
	{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$status"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "paid", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$isPaid", 1, 0}}}}}},
		{Key: "revenue", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$isPaid", "$totalPrice", 0}}}}}},
	}}},
}

type statusGroup struct {
	Status  models.OrderStatus `bson:"_id"`
	Count   int64              `bson:"count"`
	Paid    int64              `bson:"paid"`
	Revenue decimal.Decimal    `bson:"revenue"`
}

func (r *OrderRepo) Summary(ctx context.Context) (*models.OrderSummary, error) {
	start := time.Now()
	cur, err := r.c.Aggregate(ctx, summaryPipeline)
	r.c.observe(ctx, "aggregate", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}
	var groups []statusGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode order summary: %w", err)
	}

	s := &models.OrderSummary{Revenue: decimal.Zero, ByStatus: map[models.OrderStatus]int64{}}
	for _, g := range groups {
		s.ByStatus[g.Status] = g.Count
		s.TotalOrders += g.Count
		s.PaidOrders += g.Paid
		s.Revenue = s.Revenue.Add(g.Revenue)
	}
	return s, nil
}
