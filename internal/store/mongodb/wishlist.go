package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// WishlistRepo stores one document per user with the saved items embedded
type WishlistRepo struct {
	c collection
}

type wishlistDoc struct {
	UserID string                `bson:"_id"`
	Items  []models.WishlistItem `bson:"items"`
}

func (r *WishlistRepo) Items(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var doc wishlistDoc
	err := r.c.findOne(ctx, userID, &doc, models.ErrNotFound)
	if errors.Is(err, models.ErrNotFound) {
		return []models.WishlistItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Items == nil {
		doc.Items = []models.WishlistItem{}
	}
	return doc.Items, nil
}

// wishlistAdd matches the user's document only while it lacks productID, so
// the upsert either appends or collides on _id when the item is present.
func wishlistAdd(userID string, item models.WishlistItem) (bson.M, bson.M) {
	filter := bson.M{"_id": userID, "items.productId": bson.M{"$ne": item.ProductID}}
	update := bson.M{"$push": bson.M{"items": item}}
	return filter, update
}

func (r *WishlistRepo) Add(ctx context.Context, userID string, item models.WishlistItem) error {
	filter, update := wishlistAdd(userID, item)
	start := time.Now()
	_, err := r.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	r.c.observe(ctx, "updateOne", start, err)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	start := time.Now()
	_, err := r.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"items": bson.M{"productId": productID}}})
	r.c.observe(ctx, "updateOne", start, err)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}
