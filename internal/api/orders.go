package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CreateOrderHandler handles POST /api/orders. The cart is cleared once the
// order is stored.
func (a *App) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	userID := identity(r).UserID

	order, err := a.orderService.CreateOrder(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := a.cartService.Clear(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("order_id", order.ID).Msg("failed to clear cart after checkout")
	}
	ok(w, http.StatusCreated, "order", order)
}

// ListMyOrdersHandler handles GET /api/orders
func (a *App) ListMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orderService.ListUserOrders(r.Context(), identity(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "orders", orders)
}

// GetOrderHandler handles GET /api/orders/{id}
func (a *App) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := a.orderService.GetOrder(r.Context(), identity(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "order", order)
}

// CancelOrderHandler handles PUT /api/orders/{id}/cancel
func (a *App) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := a.orderService.CancelOrder(r.Context(), identity(r).UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "order", order)
}

// ListAllOrdersHandler handles GET /api/orders/admin/all
func (a *App) ListAllOrdersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.OrderFilter{Status: models.OrderStatus(q.Get("status"))}
	var err error
	if f.Page, err = intParam(q, "page"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Limit, err = intParam(q, "limit"); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.orderService.ListOrders(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"orders":     page.Orders,
		"pagination": page.Pagination,
	})
}

// UpdateOrderStatusHandler handles PUT /api/orders/{id}/status
func (a *App) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := a.orderService.UpdateStatus(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "order", order)
}
