package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/store"
)

const productColumns = `id, name, description, price, compare_at_price, stock, sold, category, images,
	rating, num_reviews, reviews, featured, is_active, brand, tags, version, created_at, updated_at`

// ProductRepo stores products in the products table
type ProductRepo struct {
	q querier
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// productWhere translates a filter into a WHERE clause and its arguments
func productWhere(f models.ProductFilter) (string, []any, error) {
	var conds []string
	var args []any

	if !f.IncludeInactive {
		conds = append(conds, "is_active = TRUE")
	}
	if f.Featured {
		conds = append(conds, "featured = TRUE")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= ?")
		args = append(args, *f.MinRating)
	}
	if f.Brand != "" {
		conds = append(conds, "brand = ?")
		args = append(args, f.Brand)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(f.Tags) > 0 {
		tags, err := toJSON(f.Tags)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, "JSON_OVERLAPS(tags, CAST(? AS JSON))")
		args = append(args, string(tags))
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func productOrder(sort string) string {
	switch sort {
	case models.SortPriceAsc:
		return " ORDER BY price ASC, id ASC"
	case models.SortPriceDesc:
		return " ORDER BY price DESC, id ASC"
	case models.SortRating:
		return " ORDER BY rating DESC, id ASC"
	case models.SortPopular:
		return " ORDER BY sold DESC, id ASC"
	default:
		return " ORDER BY created_at DESC, id ASC"
	}
}

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	var compareAt decimal.NullDecimal
	var images, reviews, tags []byte
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &compareAt, &p.Stock, &p.Sold, &p.Category, &images,
		&p.Rating, &p.NumReviews, &reviews, &p.Featured, &p.IsActive, &p.Brand, &tags, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if compareAt.Valid {
		p.CompareAtPrice = &compareAt.Decimal
	}
	if err := fromJSON(images, &p.Images); err != nil {
		return nil, err
	}
	if err := fromJSON(reviews, &p.Reviews); err != nil {
		return nil, err
	}
	if err := fromJSON(tags, &p.Tags); err != nil {
		return nil, err
	}
	return &p, nil
}

// productDocuments encodes the JSON columns shared by insert and update
func productDocuments(p *models.Product) (images, reviews, tags []byte, err error) {
	if images, err = toJSON(nonNil(p.Images)); err != nil {
		return
	}
	if reviews, err = toJSON(nonNil(p.Reviews)); err != nil {
		return
	}
	tags, err = toJSON(nonNil(p.Tags))
	return
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func compareAtArg(p *models.Product) decimal.NullDecimal {
	if p.CompareAtPrice == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p.CompareAtPrice, Valid: true}
}

func (r *ProductRepo) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	where, args, err := productWhere(f)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM products" + where
	if err := r.q.queryRow(ctx, "products", countQuery, []any{&total}, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page, limit := store.NormalizePage(f.Page, f.Limit)
	query := "SELECT " + productColumns + " FROM products" + where + productOrder(f.Sort) + " LIMIT ? OFFSET ?"
	rows, err := r.q.query(ctx, "products", query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = ?"
	start := time.Now()
	p, err := scanProduct(r.q.db.QueryRowContext(ctx, query, id))
	r.q.metrics.RecordDBQuery(ctx, "SELECT", "products", query, start, err == nil || errors.Is(err, sql.ErrNoRows))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	images, reviews, tags, err := productDocuments(p)
	if err != nil {
		return err
	}
	p.Version = 1
	query := "INSERT INTO products (" + productColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.q.exec(ctx, "INSERT", "products", query,
		p.ID, p.Name, p.Description, p.Price, compareAtArg(p), p.Stock, p.Sold, p.Category, images,
		p.Rating, p.NumReviews, reviews, p.Featured, p.IsActive, p.Brand, tags, p.Version, p.CreatedAt, p.UpdatedAt)
	if isDuplicate(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	images, reviews, tags, err := productDocuments(p)
	if err != nil {
		return err
	}
	query := `UPDATE products SET name = ?, description = ?, price = ?, compare_at_price = ?, stock = ?, sold = ?,
		category = ?, images = ?, rating = ?, num_reviews = ?, reviews = ?, featured = ?, is_active = ?, brand = ?,
		tags = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`
	res, err := r.q.exec(ctx, "UPDATE", "products", query,
		p.Name, p.Description, p.Price, compareAtArg(p), p.Stock, p.Sold,
		p.Category, images, p.Rating, p.NumReviews, reviews, p.Featured, p.IsActive, p.Brand,
		tags, p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if err := r.q.casResult(ctx, res, "products", "id", p.ID, models.ErrProductNotFound); err != nil {
		return err
	}
	p.Version++
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	query := "DELETE FROM products WHERE id = ?"
	res, err := r.q.exec(ctx, "DELETE", "products", query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM products WHERE category = ?"
	if err := r.q.queryRow(ctx, "products", query, []any{&n}, categoryID); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) RecordSale(ctx context.Context, id string, quantity int) error {
	query := `UPDATE products SET stock = GREATEST(stock - ?, 0), sold = sold + ?, version = version + 1, updated_at = ?
		WHERE id = ?`
	res, err := r.q.exec(ctx, "UPDATE", "products", query, quantity, quantity, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrProductNotFound
	}
	return nil
}
