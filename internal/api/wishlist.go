package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// GetWishlistHandler handles GET /api/users/wishlist/items
func (a *App) GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.wishlistService.GetWishlist(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "wishlist", products)
}

// AddWishlistItemHandler handles POST /api/users/wishlist/{productId}
func (a *App) AddWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.wishlistService.AddItem(r.Context(), identity(r).UserID, mux.Vars(r)["productId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "wishlist", products)
}

// RemoveWishlistItemHandler handles DELETE /api/users/wishlist/{productId}
func (a *App) RemoveWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.wishlistService.RemoveItem(r.Context(), identity(r).UserID, mux.Vars(r)["productId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "wishlist", products)
}
