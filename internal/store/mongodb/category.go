package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CategoryRepo stores categories in the categories collection
type CategoryRepo struct {
	c collection
}

func (r *CategoryRepo) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	q := bson.M{}
	if !includeInactive {
		q["isActive"] = true
	}
	categories := []models.Category{}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := r.c.findAll(ctx, q, opts, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	if err := r.c.findOne(ctx, id, &c, models.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.c.insert(ctx, c)
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	start := time.Now()
	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	r.c.observe(ctx, "replaceOne", start, err)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.c.deleteOne(ctx, id, models.ErrCategoryNotFound)
}
