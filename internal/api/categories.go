package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/models"
)

// ListCategoriesHandler handles GET /api/categories
func (a *App) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	if who, found := middleware.IdentityFrom(r.Context()); found && who.IsAdmin() {
		includeInactive = r.URL.Query().Get("includeInactive") == "true"
	}
	categories, err := a.categoryService.ListCategories(r.Context(), includeInactive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "categories", categories)
}

// GetCategoryHandler handles GET /api/categories/{id}
func (a *App) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := a.categoryService.GetCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "category", category)
}

// CreateCategoryHandler handles POST /api/categories
func (a *App) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := a.categoryService.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "category", category)
}

// UpdateCategoryHandler handles PUT /api/categories/{id}
func (a *App) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := a.categoryService.UpdateCategory(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "category", category)
}

// DeleteCategoryHandler handles DELETE /api/categories/{id}
func (a *App) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.categoryService.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "message", "category deleted")
}
