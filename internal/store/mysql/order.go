package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

const orderColumns = `id, user_id, order_items, shipping_address, payment_method, items_price, shipping_price,
	tax_price, total_price, is_paid, paid_at, payment_result, status, tracking_number, delivered_at, version,
	created_at, updated_at`

// OrderRepo stores orders in the orders table
type OrderRepo struct {
	q querier
}

func scanOrder(s scanner) (*models.Order, error) {
	var o models.Order
	var items, address, result []byte
	var paidAt, deliveredAt sql.NullTime
	err := s.Scan(&o.ID, &o.UserID, &items, &address, &o.PaymentMethod, &o.ItemsPrice, &o.ShippingPrice,
		&o.TaxPrice, &o.TotalPrice, &o.IsPaid, &paidAt, &result, &o.Status, &o.TrackingNumber, &deliveredAt, &o.Version,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	if err := fromJSON(items, &o.OrderItems); err != nil {
		return nil, err
	}
	if err := fromJSON(address, &o.ShippingAddress); err != nil {
		return nil, err
	}
	if len(result) > 0 && string(result) != "null" {
		o.PaymentResult = &models.PaymentResult{}
		if err := fromJSON(result, o.PaymentResult); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// orderDocuments encodes the JSON columns of an order
func orderDocuments(o *models.Order) (items, address []byte, result any, err error) {
	if items, err = toJSON(nonNil(o.OrderItems)); err != nil {
		return
	}
	if address, err = toJSON(o.ShippingAddress); err != nil {
		return
	}
	if o.PaymentResult != nil {
		var b []byte
		if b, err = toJSON(o.PaymentResult); err != nil {
			return
		}
		result = b
	}
	return
}

func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	items, address, result, err := orderDocuments(o)
	if err != nil {
		return err
	}
	o.Version = 1
	query := "INSERT INTO orders (" + orderColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.q.exec(ctx, "INSERT", "orders", query,
		o.ID, o.UserID, items, address, o.PaymentMethod, o.ItemsPrice, o.ShippingPrice,
		o.TaxPrice, o.TotalPrice, o.IsPaid, nullTime(o.PaidAt), result, o.Status, o.TrackingNumber, nullTime(o.DeliveredAt), o.Version,
		o.CreatedAt, o.UpdatedAt)
	if isDuplicate(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = ?"
	start := time.Now()
	o, err := scanOrder(r.q.db.QueryRowContext(ctx, query, id))
	r.q.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil || errors.Is(err, sql.ErrNoRows))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// Update rewrites the mutable fields; items and prices are fixed at creation
func (r *OrderRepo) Update(ctx context.Context, o *models.Order) error {
	_, _, result, err := orderDocuments(o)
	if err != nil {
		return err
	}
	query := `UPDATE orders SET is_paid = ?, paid_at = ?, payment_result = ?, status = ?, tracking_number = ?,
		delivered_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.q.exec(ctx, "UPDATE", "orders", query,
		o.IsPaid, nullTime(o.PaidAt), result, o.Status, o.TrackingNumber,
		nullTime(o.DeliveredAt), o.UpdatedAt, o.ID, o.Version)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if err := r.q.casResult(ctx, res, "orders", "id", o.ID, models.ErrOrderNotFound); err != nil {
		return err
	}
	o.Version++
	return nil
}

func (r *OrderRepo) scanAll(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()
	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := r.q.query(ctx, "orders", query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return r.scanAll(rows)
}

func (r *OrderRepo) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	where := ""
	var args []any
	if f.Status != "" {
		where = " WHERE status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.q.queryRow(ctx, "orders", "SELECT COUNT(*) FROM orders"+where, []any{&total}, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page, limit := store.NormalizePage(f.Page, f.Limit)
	query := "SELECT " + orderColumns + " FROM orders" + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.q.query(ctx, "orders", query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	orders, err := r.scanAll(rows)
	return orders, total, err
}

func (r *OrderRepo) Summary(ctx context.Context) (*models.OrderSummary, error) {
	query := `SELECT status, COUNT(*), COALESCE(SUM(is_paid), 0),
		COALESCE(SUM(CASE WHEN is_paid THEN total_price ELSE 0 END), 0)
		FROM orders GROUP BY status`
	rows, err := r.q.query(ctx, "orders", query)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}
	defer rows.Close()

	s := &models.OrderSummary{Revenue: decimal.Zero, ByStatus: map[models.OrderStatus]int64{}}
	for rows.Next() {
		var status models.OrderStatus
		var count, paid int64
		var revenue decimal.Decimal
		if err := rows.Scan(&status, &count, &paid, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		s.ByStatus[status] = count
		s.TotalOrders += count
		s.PaidOrders += paid
		s.Revenue = s.Revenue.Add(revenue)
	}
	return s, rows.Err()
}
