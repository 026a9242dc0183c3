package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/report"
)

// DashboardHandler handles GET /api/admin/dashboard
func (a *App) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.dashboardService.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "stats", stats)
}

// ExportOrdersHandler handles GET /api/admin/orders/export?status=
func (a *App) ExportOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orderService.AllOrders(r.Context(), models.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	// rendered to a buffer so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := report.WriteOrders(&buf, orders); err != nil {
		writeError(w, r, fmt.Errorf("failed to render order export: %w", err))
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
