package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// GetCartHandler handles GET /api/cart
func (a *App) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := a.cartService.GetOrCreateCart(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart", cart)
}

// AddCartItemHandler handles POST /api/cart/items
func (a *App) AddCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID == "" {
		writeError(w, r, models.InvalidInput("productId is required"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := a.cartService.AddItem(r.Context(), identity(r).UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart", cart)
}

// UpdateCartItemHandler handles PUT /api/cart/items/{productId}
func (a *App) UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := a.cartService.UpdateItem(r.Context(), identity(r).UserID, mux.Vars(r)["productId"], req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart", cart)
}

// RemoveCartItemHandler handles DELETE /api/cart/items/{productId}
func (a *App) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := a.cartService.RemoveItem(r.Context(), identity(r).UserID, mux.Vars(r)["productId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart", cart)
}

// ClearCartHandler handles DELETE /api/cart
func (a *App) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := a.cartService.Clear(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "cart", cart)
}
