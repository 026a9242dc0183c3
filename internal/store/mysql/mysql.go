// Package mysql implements the store contracts on MySQL. Nested document
// fields (images, reviews, cart lines, order snapshots) live in JSON columns.
package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

//go:embed schema.sql
var Schema string

const errDuplicateEntry = 1062

// New returns a Store backed by database. The schema is created if missing.
func New(ctx context.Context, database *db.DB, m *metrics.AppMetrics) (*store.Store, error) {
	if err := database.InitSchema(ctx, Schema); err != nil {
		return nil, err
	}
	q := querier{db: database, metrics: m}
	return &store.Store{
		Products:   &ProductRepo{q},
		Categories: &CategoryRepo{q},
		Carts:      &CartRepo{q},
		Wishlists:  &WishlistRepo{q},
		Orders:     &OrderRepo{q},
		Close:      func(context.Context) error { return database.Close() },
	}, nil
}

// querier runs statements and records a db query metric for each
type querier struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

func (q querier) exec(ctx context.Context, op, table, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := q.db.ExecContext(ctx, query, args...)
	q.metrics.RecordDBQuery(ctx, op, table, query, start, err == nil)
	return res, err
}

func (q querier) query(ctx context.Context, table, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.db.QueryContext(ctx, query, args...)
	q.metrics.RecordDBQuery(ctx, "SELECT", table, query, start, err == nil)
	return rows, err
}

func (q querier) queryRow(ctx context.Context, table, query string, dest []any, args ...any) error {
	start := time.Now()
	err := q.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	q.metrics.RecordDBQuery(ctx, "SELECT", table, query, start, err == nil || errors.Is(err, sql.ErrNoRows))
	return err
}

// exists reports whether a row with the given key is present
func (q querier) exists(ctx context.Context, table, key string, id string) (bool, error) {
	var found bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", table, key)
	if err := q.queryRow(ctx, table, query, []any{&found}, id); err != nil {
		return false, err
	}
	return found, nil
}

// casResult maps a version-checked update to ErrConflict or notFound
func (q querier) casResult(ctx context.Context, res sql.Result, table, key, id string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	found, err := q.exists(ctx, table, key, id)
	if err != nil {
		return err
	}
	if !found {
		return notFound
	}
	return models.ErrConflict
}

func isDuplicate(err error) bool {
	var me *mysqldriver.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}

func toJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return b, nil
}

func fromJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
