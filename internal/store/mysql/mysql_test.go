package mysql

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/models"
)

func TestProductWhere(t *testing.T) {
	lo := decimal.NewFromInt(10)
	rating := 4.0

	tests := []struct {
		name     string
		filter   models.ProductFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "active only by default",
			filter:  models.ProductFilter{},
			wantSQL: " WHERE is_active = TRUE",
		},
		{
			name:    "admin sees everything",
			filter:  models.ProductFilter{IncludeInactive: true},
			wantSQL: "",
		},
		{
			name:     "combined filters",
			filter:   models.ProductFilter{IncludeInactive: true, Category: "c1", MinPrice: &lo, MinRating: &rating, Brand: "Acme"},
			wantSQL:  " WHERE category = ? AND price >= ? AND rating >= ? AND brand = ?",
			wantArgs: []any{"c1", lo, 4.0, "Acme"},
		},
		{
			name:     "search escapes wildcards",
			filter:   models.ProductFilter{IncludeInactive: true, Search: "50%_Off"},
			wantSQL:  " WHERE (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)",
			wantArgs: []any{`%50\%\_off%`, `%50\%\_off%`},
		},
		{
			name:     "tags overlap",
			filter:   models.ProductFilter{IncludeInactive: true, Tags: []string{"a", "b"}},
			wantSQL:  " WHERE JSON_OVERLAPS(tags, CAST(? AS JSON))",
			wantArgs: []any{`["a","b"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := productWhere(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestProductOrder(t *testing.T) {
	assert.Equal(t, " ORDER BY price ASC, id ASC", productOrder(models.SortPriceAsc))
	assert.Equal(t, " ORDER BY sold DESC, id ASC", productOrder(models.SortPopular))
	assert.Equal(t, " ORDER BY created_at DESC, id ASC", productOrder(""))
}

func TestIsDuplicate(t *testing.T) {
	dup := &mysqldriver.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry"}
	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isDuplicate(&mysqldriver.MySQLError{Number: 1146}))
	assert.False(t, isDuplicate(errors.New("boom")))
	assert.False(t, isDuplicate(nil))
}

func TestSchemaDeclaresEveryTable(t *testing.T) {
	stmts := db.SplitSQLStatements(Schema)
	require.Len(t, stmts, 5)
	for _, table := range []string{"categories", "products", "carts", "wishlist_items", "orders"} {
		assert.True(t, strings.Contains(Schema, "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
	}
}
