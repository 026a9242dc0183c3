package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// ProductRepo stores products in the products collection
type ProductRepo struct {
	c collection
}

// productQuery translates a filter into a mongo query document
func productQuery(f models.ProductFilter) bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["isActive"] = true
	}
	if f.Featured {
		q["featured"] = true
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["price"] = price
	}
	if f.MinRating != nil {
		q["rating"] = bson.M{"$gte": *f.MinRating}
	}
	if f.Brand != "" {
		q["brand"] = f.Brand
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		q["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"description": pattern}}
	}
	if len(f.Tags) > 0 {
		q["tags"] = bson.M{"$in": f.Tags}
	}
	return q
}

func productSort(key string) bson.D {
	switch key {
	case models.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case models.SortRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
	case models.SortPopular:
		return bson.D{{Key: "sold", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func (r *ProductRepo) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	q := productQuery(f)
	total, err := r.c.count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	products := []models.Product{}
	if err := r.c.findAll(ctx, q, pageOptions(f.Page, f.Limit, productSort(f.Sort)), &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.c.findOne(ctx, id, &p, models.ErrProductNotFound); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	p.Version = 1
	return r.c.insert(ctx, p)
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	next := p.Clone()
	next.Version++
	if err := r.c.replaceVersioned(ctx, p.ID, p.Version, next, models.ErrProductNotFound); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.c.deleteOne(ctx, id, models.ErrProductNotFound)
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return r.c.count(ctx, bson.M{"category": categoryID})
}

// RecordSale applies the stock floor server-side with an update pipeline
func (r *ProductRepo) RecordSale(ctx context.Context, id string, quantity int) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stock", Value: bson.D{{Key: "$max", Value: bson.A{0, bson.D{{Key: "$subtract", Value: bson.A{"$stock", quantity}}}}}}},
			{Key: "sold", Value: bson.D{{Key: "$add", Value: bson.A{"$sold", quantity}}}},
			{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{"$version", 1}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	start := time.Now()
	res, err := r.c.UpdateByID(ctx, id, pipeline)
	r.c.observe(ctx, "updateOne", start, err)
	if err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrProductNotFound
	}
	return nil
}
