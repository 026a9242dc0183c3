package mysql

import (
	"context"
	"fmt"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// WishlistRepo stores one row per saved product in wishlist_items
type WishlistRepo struct {
	q querier
}

func (r *WishlistRepo) Items(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	query := "SELECT product_id, added_at FROM wishlist_items WHERE user_id = ? ORDER BY added_at, product_id"
	rows, err := r.q.query(ctx, "wishlist_items", query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		var it models.WishlistItem
		if err := rows.Scan(&it.ProductID, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *WishlistRepo) Add(ctx context.Context, userID string, item models.WishlistItem) error {
	query := "INSERT INTO wishlist_items (user_id, product_id, added_at) VALUES (?, ?, ?)"
	_, err := r.q.exec(ctx, "INSERT", "wishlist_items", query, userID, item.ProductID, item.AddedAt)
	if err != nil && !isDuplicate(err) {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, productID string) error {
	query := "DELETE FROM wishlist_items WHERE user_id = ? AND product_id = ?"
	if _, err := r.q.exec(ctx, "DELETE", "wishlist_items", query, userID, productID); err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}
