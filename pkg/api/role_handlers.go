package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"admind/pkg/httputil"
	"admind/pkg/middleware"
	"admind/pkg/rbac"
)

// RoleHandlers handles role and permission endpoints
type RoleHandlers struct {
	roles *rbac.Store
}

// NewRoleHandlers creates a new role handlers instance
func NewRoleHandlers(roles *rbac.Store) *RoleHandlers {
	return &RoleHandlers{roles: roles}
}

// RegisterRoutes registers role routes behind the roles permission gate.
// The permission catalog itself only needs a session, not a role grant, so
// the role editor can always render its checkboxes.
func (h *RoleHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/permissions", h.listPermissions).Methods("GET")

	gate := middleware.RequirePermission(rbac.ResourceRoles)
	router.Handle("/api/roles", gate(http.HandlerFunc(h.list))).Methods("GET")
	router.Handle("/api/roles", gate(http.HandlerFunc(h.create))).Methods("POST")
	router.Handle("/api/roles/{id}", gate(http.HandlerFunc(h.get))).Methods("GET")
	router.Handle("/api/roles/{id}", gate(http.HandlerFunc(h.update))).Methods("PUT")
	router.Handle("/api/roles/{id}", gate(http.HandlerFunc(h.delete))).Methods("DELETE")
}

// listPermissions handles GET /api/permissions
func (h *RoleHandlers) listPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.roles.ListPermissions(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, permissions)
}

// list handles GET /api/roles. Roles are a small fixed collection and are
// returned whole, without the pagination contract.
func (h *RoleHandlers) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ListRoles(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, roles)
}

// create handles POST /api/roles
func (h *RoleHandlers) create(w http.ResponseWriter, r *http.Request) {
	name, permissionIDs, ok := parseRoleBody(w, r)
	if !ok {
		return
	}

	role, err := h.roles.CreateRole(r.Context(), name, permissionIDs)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, role)
}

// get handles GET /api/roles/{id}
func (h *RoleHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	role, err := h.roles.GetRole(r.Context(), id)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		httputil.WriteNotFound(w, "Role not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, role)
}

// update handles PUT /api/roles/{id}
func (h *RoleHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	name, permissionIDs, ok := parseRoleBody(w, r)
	if !ok {
		return
	}

	role, err := h.roles.UpdateRole(r.Context(), id, name, permissionIDs)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		httputil.WriteNotFound(w, "Role not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteAccepted(w, role)
}

// delete handles DELETE /api/roles/{id}
func (h *RoleHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	err = h.roles.DeleteRole(r.Context(), id)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		httputil.WriteNotFound(w, "Role not found")
		return
	}
	if errors.Is(err, rbac.ErrRoleInUse) {
		httputil.WriteConflict(w, "Role is still assigned to users")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// parseRoleBody decodes and validates the shared create/update payload
func parseRoleBody(w http.ResponseWriter, r *http.Request) (string, []int64, bool) {
	var req struct {
		Name        string  `json:"name"`
		Permissions []int64 `json:"permissions"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return "", nil, false
	}
	if fe := httputil.RequireNonEmpty(req.Name, "name"); fe != nil {
		httputil.WriteValidationError(w, []httputil.FieldError{*fe})
		return "", nil, false
	}
	return req.Name, req.Permissions, true
}
