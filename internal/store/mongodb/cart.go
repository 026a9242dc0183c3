package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CartRepo stores carts keyed by user id in the carts collection
type CartRepo struct {
	c collection
}

func (r *CartRepo) Get(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.c.findOne(ctx, userID, &cart, models.ErrCartNotFound); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *CartRepo) Create(ctx context.Context, c *models.Cart) error {
	c.Version = 1
	return r.c.insert(ctx, c)
}

func (r *CartRepo) Update(ctx context.Context, c *models.Cart) error {
	next := c.Clone()
	next.Version++
	if err := r.c.replaceVersioned(ctx, c.UserID, c.Version, next, models.ErrCartNotFound); err != nil {
		return err
	}
	c.Version = next.Version
	return nil
}

func (r *CartRepo) CountActive(ctx context.Context) (int64, error) {
	return r.c.count(ctx, bson.M{"totalItems": bson.M{"$gt": 0}})
}
