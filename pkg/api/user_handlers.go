package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"admind/pkg/auth"
	"admind/pkg/httputil"
	"admind/pkg/middleware"
	"admind/pkg/pagination"
	"admind/pkg/rbac"
)

// UserHandlers handles the administrative user CRUD endpoints
type UserHandlers struct {
	users *auth.Store
	roles *rbac.Store
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(users *auth.Store, roles *rbac.Store) *UserHandlers {
	return &UserHandlers{users: users, roles: roles}
}

// RegisterRoutes registers user admin routes behind the users permission gate
func (h *UserHandlers) RegisterRoutes(router *mux.Router) {
	gate := middleware.RequirePermission(rbac.ResourceUsers)
	router.Handle("/api/users", gate(http.HandlerFunc(h.list))).Methods("GET")
	router.Handle("/api/users", gate(http.HandlerFunc(h.create))).Methods("POST")
	router.Handle("/api/users/{id}", gate(http.HandlerFunc(h.get))).Methods("GET")
	router.Handle("/api/users/{id}", gate(http.HandlerFunc(h.update))).Methods("PUT")
	router.Handle("/api/users/{id}", gate(http.HandlerFunc(h.delete))).Methods("DELETE")
}

// list handles GET /api/users
func (h *UserHandlers) list(w http.ResponseWriter, r *http.Request) {
	page := pagination.Clamp(httputil.ParseQueryInt(r, "page", 1))
	search := httputil.ParseSearchQuery(r)

	result, err := h.users.Paginate(r.Context(), page, search)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if search != "" && len(result.Data) == 0 {
		httputil.WriteNotFound(w, fmt.Sprintf("No users found matching '%s'", search))
		return
	}
	httputil.WriteSuccess(w, result)
}

// create handles POST /api/users. Unlike self-registration, the role is
// assigned up front and the password must still be supplied explicitly.
func (h *UserHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName        string `json:"fullname"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
		RoleID          int64  `json:"role_id"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	fieldErrors := validateRegistration(req.FullName, req.Username, req.Email, req.Password, req.PasswordConfirm)
	if len(fieldErrors) > 0 {
		httputil.WriteValidationError(w, fieldErrors)
		return
	}

	role, err := h.roles.GetRole(r.Context(), req.RoleID)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		httputil.WriteConflict(w, "Role not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	username := auth.NormalizeUsername(req.Username)
	email := auth.NormalizeEmail(req.Email)

	taken, err := h.credentialsTaken(r, email, username, "")
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if taken {
		httputil.WriteConflict(w, "Email or username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	user := &auth.User{
		FullName:     req.FullName,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	// the pre-check is racy; the unique constraints are the backstop
	err = h.users.CreateUser(r.Context(), user)
	if errors.Is(err, auth.ErrCredentialsTaken) {
		httputil.WriteConflict(w, "Email or username already exists")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, user)
}

// get handles GET /api/users/{id}
func (h *UserHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if errors.Is(err, auth.ErrUserNotFound) {
		httputil.WriteNotFound(w, "User not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

// update handles PUT /api/users/{id}
func (h *UserHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	var req struct {
		FullName string `json:"fullname"`
		Username string `json:"username"`
		Email    string `json:"email"`
		RoleID   *int64 `json:"role_id"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if errors.Is(err, auth.ErrUserNotFound) {
		httputil.WriteNotFound(w, "User not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Username != "" {
		username := auth.NormalizeUsername(req.Username)
		if username != user.Username {
			taken, err := h.users.UsernameTaken(r.Context(), username, user.ID)
			if err != nil {
				httputil.WriteInternalError(w, err)
				return
			}
			if taken {
				httputil.WriteConflict(w, "Username already exists")
				return
			}
			user.Username = username
		}
	}
	if req.Email != "" {
		email := auth.NormalizeEmail(req.Email)
		if email != user.Email {
			taken, err := h.users.EmailTaken(r.Context(), email, user.ID)
			if err != nil {
				httputil.WriteInternalError(w, err)
				return
			}
			if taken {
				httputil.WriteConflict(w, "Email already exists")
				return
			}
			user.Email = email
		}
	}
	if req.RoleID != nil {
		role, err := h.roles.GetRole(r.Context(), *req.RoleID)
		if errors.Is(err, rbac.ErrRoleNotFound) {
			httputil.WriteNotFound(w, "Role not found")
			return
		}
		if err != nil {
			httputil.WriteInternalError(w, err)
			return
		}
		user.Role = role
	}

	err = h.users.UpdateUser(r.Context(), user)
	if errors.Is(err, auth.ErrCredentialsTaken) {
		httputil.WriteConflict(w, "Email or username already exists")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteAccepted(w, user)
}

// delete handles DELETE /api/users/{id}
func (h *UserHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	err = h.users.DeleteUser(r.Context(), id)
	if errors.Is(err, auth.ErrUserNotFound) {
		httputil.WriteNotFound(w, "User not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// credentialsTaken reports whether email or username already belongs to
// another user
func (h *UserHandlers) credentialsTaken(r *http.Request, email, username, excludeID string) (bool, error) {
	emailTaken, err := h.users.EmailTaken(r.Context(), email, excludeID)
	if err != nil {
		return false, err
	}
	usernameTaken, err := h.users.UsernameTaken(r.Context(), username, excludeID)
	if err != nil {
		return false, err
	}
	return emailTaken || usernameTaken, nil
}
