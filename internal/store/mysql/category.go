package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

const categoryColumns = "id, name, slug, description, is_active, created_at, updated_at"

// CategoryRepo stores categories in the categories table
type CategoryRepo struct {
	q querier
}

func (r *CategoryRepo) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories"
	if !includeInactive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY name"

	rows, err := r.q.query(ctx, "categories", query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	query := "SELECT " + categoryColumns + " FROM categories WHERE id = ?"
	err := r.q.queryRow(ctx, "categories", query,
		[]any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt}, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	query := "INSERT INTO categories (" + categoryColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := r.q.exec(ctx, "INSERT", "categories", query,
		c.ID, c.Name, c.Slug, c.Description, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if isDuplicate(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	query := "UPDATE categories SET name = ?, slug = ?, description = ?, is_active = ?, updated_at = ? WHERE id = ?"
	res, err := r.q.exec(ctx, "UPDATE", "categories", query,
		c.Name, c.Slug, c.Description, c.IsActive, c.UpdatedAt, c.ID)
	if isDuplicate(err) {
		return models.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports zero affected rows when nothing changed
		found, err := r.q.exists(ctx, "categories", "id", c.ID)
		if err != nil {
			return err
		}
		if !found {
			return models.ErrCategoryNotFound
		}
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, "DELETE", "categories", "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrCategoryNotFound
	}
	return nil
}
