package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CartRepo stores one row per user in the carts table
type CartRepo struct {
	q querier
}

func (r *CartRepo) Get(ctx context.Context, userID string) (*models.Cart, error) {
	query := "SELECT user_id, items, total_items, total_price, version, created_at, updated_at FROM carts WHERE user_id = ?"
	var c models.Cart
	var items []byte
	start := time.Now()
	err := r.q.db.QueryRowContext(ctx, query, userID).Scan(&c.UserID, &items, &c.TotalItems, &c.TotalPrice, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	r.q.metrics.RecordDBQuery(ctx, "SELECT", "carts", query, start, err == nil || errors.Is(err, sql.ErrNoRows))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if err := fromJSON(items, &c.Items); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (r *CartRepo) Create(ctx context.Context, c *models.Cart) error {
	items, err := toJSON(nonNil(c.Items))
	if err != nil {
		return err
	}
	c.Version = 1
	query := `INSERT INTO carts (user_id, items, total_items, total_price, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.q.exec(ctx, "INSERT", "carts", query,
		c.UserID, items, c.TotalItems, c.TotalPrice, c.Version, c.CreatedAt, c.UpdatedAt)
	if isDuplicate(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *CartRepo) Update(ctx context.Context, c *models.Cart) error {
	items, err := toJSON(nonNil(c.Items))
	if err != nil {
		return err
	}
	query := `UPDATE carts SET items = ?, total_items = ?, total_price = ?, updated_at = ?, version = version + 1
		WHERE user_id = ? AND version = ?`
	res, err := r.q.exec(ctx, "UPDATE", "carts", query,
		items, c.TotalItems, c.TotalPrice, c.UpdatedAt, c.UserID, c.Version)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if err := r.q.casResult(ctx, res, "carts", "user_id", c.UserID, models.ErrCartNotFound); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (r *CartRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM carts WHERE total_items > 0"
	if err := r.q.queryRow(ctx, "carts", query, []any{&n}); err != nil {
		return 0, fmt.Errorf("failed to count active carts: %w", err)
	}
	return n, nil
}
