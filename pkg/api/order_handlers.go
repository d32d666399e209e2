package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"admind/pkg/httputil"
	"admind/pkg/middleware"
	"admind/pkg/observability"
	"admind/pkg/orders"
	"admind/pkg/pagination"
	"admind/pkg/rbac"
)

// OrderHandlers handles order listing and the reporting endpoints
type OrderHandlers struct {
	orders *orders.Store
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(store *orders.Store) *OrderHandlers {
	return &OrderHandlers{orders: store}
}

// RegisterRoutes registers order routes behind the orders permission gate.
// Export is a POST, so it needs the edit grant while list and chart pass
// with view.
func (h *OrderHandlers) RegisterRoutes(router *mux.Router) {
	gate := middleware.RequirePermission(rbac.ResourceOrders)
	router.Handle("/api/orders", gate(http.HandlerFunc(h.list))).Methods("GET")
	router.Handle("/api/export", gate(http.HandlerFunc(h.export))).Methods("POST")
	router.Handle("/api/chart", gate(http.HandlerFunc(h.chart))).Methods("GET")
}

// list handles GET /api/orders
func (h *OrderHandlers) list(w http.ResponseWriter, r *http.Request) {
	page := pagination.Clamp(httputil.ParseQueryInt(r, "page", 1))
	search := httputil.ParseSearchQuery(r)

	result, err := h.orders.Paginate(r.Context(), page, search)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if search != "" && len(result.Data) == 0 {
		httputil.WriteNotFound(w, fmt.Sprintf("No orders found matching '%s'", search))
		return
	}
	httputil.WriteSuccess(w, result)
}

// export handles POST /api/export
func (h *OrderHandlers) export(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.AllWithItems(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=orders.csv")
	if err := orders.WriteCSV(w, list); err != nil {
		// Headers are already out; the truncated body is all we can signal.
		observability.FromContext(r.Context()).WithError(err).Error("csv export failed mid-stream")
	}
}

// chart handles GET /api/chart
func (h *OrderHandlers) chart(w http.ResponseWriter, r *http.Request) {
	points, err := h.orders.Chart(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, points)
}
