package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"admind/pkg/catalog"
	"admind/pkg/httputil"
	"admind/pkg/middleware"
	"admind/pkg/pagination"
	"admind/pkg/rbac"
)

// ProductHandlers handles the product catalog endpoints
type ProductHandlers struct {
	products *catalog.Store
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(products *catalog.Store) *ProductHandlers {
	return &ProductHandlers{products: products}
}

// RegisterRoutes registers product routes behind the products permission gate
func (h *ProductHandlers) RegisterRoutes(router *mux.Router) {
	gate := middleware.RequirePermission(rbac.ResourceProducts)
	router.Handle("/api/products", gate(http.HandlerFunc(h.list))).Methods("GET")
	router.Handle("/api/products", gate(http.HandlerFunc(h.create))).Methods("POST")
	router.Handle("/api/products/{id}", gate(http.HandlerFunc(h.get))).Methods("GET")
	router.Handle("/api/products/{id}", gate(http.HandlerFunc(h.update))).Methods("PUT")
	router.Handle("/api/products/{id}", gate(http.HandlerFunc(h.delete))).Methods("DELETE")
}

// list handles GET /api/products
func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	page := pagination.Clamp(httputil.ParseQueryInt(r, "page", 1))
	search := httputil.ParseSearchQuery(r)

	result, err := h.products.Paginate(r.Context(), page, search)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if search != "" && len(result.Data) == 0 {
		httputil.WriteNotFound(w, fmt.Sprintf("No products found matching '%s'", search))
		return
	}
	httputil.WriteSuccess(w, result)
}

// create handles POST /api/products
func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	product, ok := parseProductBody(w, r)
	if !ok {
		return
	}

	if err := h.products.CreateProduct(r.Context(), product); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, product)
}

// get handles GET /api/products/{id}
func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		httputil.WriteNotFound(w, "Product not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, product)
}

// update handles PUT /api/products/{id}
func (h *ProductHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	product, ok := parseProductBody(w, r)
	if !ok {
		return
	}
	product.ID = id

	err = h.products.UpdateProduct(r.Context(), product)
	if errors.Is(err, catalog.ErrProductNotFound) {
		httputil.WriteNotFound(w, "Product not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteAccepted(w, product)
}

// delete handles DELETE /api/products/{id}
func (h *ProductHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	err = h.products.DeleteProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		httputil.WriteNotFound(w, "Product not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// parseProductBody decodes and validates the shared create/update payload
func parseProductBody(w http.ResponseWriter, r *http.Request) (*catalog.Product, bool) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Image       string `json:"image"`
		Price       int64  `json:"price"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return nil, false
	}

	var fieldErrors []httputil.FieldError
	if fe := httputil.RequireNonEmpty(req.Title, "title"); fe != nil {
		fieldErrors = append(fieldErrors, *fe)
	}
	if req.Price < 0 {
		fieldErrors = append(fieldErrors, httputil.FieldError{
			Field:   "price",
			Message: "price must not be negative",
		})
	}
	if len(fieldErrors) > 0 {
		httputil.WriteValidationError(w, fieldErrors)
		return nil, false
	}

	return &catalog.Product{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	}, true
}
