package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/models"
)

// parseProductFilter reads catalog query parameters
func parseProductFilter(q url.Values) (models.ProductFilter, error) {
	f := models.ProductFilter{
		Category: q.Get("category"),
		Search:   strings.TrimSpace(q.Get("search")),
		Brand:    q.Get("brand"),
		Sort:     q.Get("sort"),
	}
	for _, tag := range strings.Split(q.Get("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}

	var err error
	if f.MinPrice, err = decimalParam(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimalParam(q, "maxPrice"); err != nil {
		return f, err
	}
	if v := q.Get("rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, models.InvalidInput("rating must be a number")
		}
		f.MinRating = &rating
	}
	if v := q.Get("featured"); v != "" {
		if f.Featured, err = strconv.ParseBool(v); err != nil {
			return f, models.InvalidInput("featured must be true or false")
		}
	}
	if f.Page, err = intParam(q, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q, "limit"); err != nil {
		return f, err
	}
	switch f.Sort {
	case "", models.SortPriceAsc, models.SortPriceDesc, models.SortRating, models.SortNewest, models.SortPopular:
	default:
		return f, models.InvalidInput("unknown sort %q", f.Sort)
	}
	return f, nil
}

func decimalParam(q url.Values, key string) (*decimal.Decimal, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, models.InvalidInput("%s must be a number", key)
	}
	return &d, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, models.InvalidInput("%s must be an integer", key)
	}
	return n, nil
}

// ListProductsHandler handles GET /api/products
func (a *App) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if who, found := middleware.IdentityFrom(r.Context()); found && who.IsAdmin() {
		f.IncludeInactive = r.URL.Query().Get("includeInactive") == "true"
	}

	page, err := a.productService.ListProducts(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"products":   page.Products,
		"pagination": page.Pagination,
	})
}

// FeaturedProductsHandler handles GET /api/products/featured
func (a *App) FeaturedProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.productService.FeaturedProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "products", products)
}

// GetProductHandler handles GET /api/products/{id}. Inactive products are
// only visible to admins.
func (a *App) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := a.productService.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !product.IsActive {
		if who, found := middleware.IdentityFrom(r.Context()); !found || !who.IsAdmin() {
			writeError(w, r, models.ErrProductNotFound)
			return
		}
	}
	ok(w, http.StatusOK, "product", product)
}

// AddReviewHandler handles POST /api/products/{id}/reviews
func (a *App) AddReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := a.productService.AddReview(r.Context(), mux.Vars(r)["id"], identity(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "product", product)
}

// CreateProductHandler handles POST /api/products
func (a *App) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := a.productService.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "product", product)
}

// UpdateProductHandler handles PUT /api/products/{id}
func (a *App) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := a.productService.UpdateProduct(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "product", product)
}

// DeleteProductHandler handles DELETE /api/products/{id}
func (a *App) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.productService.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "message", "product deleted")
}
