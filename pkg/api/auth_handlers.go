package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"admind/pkg/auth"
	"admind/pkg/httputil"
	"admind/pkg/middleware"
	"admind/pkg/observability"
)

// AuthHandlers handles registration, login, and the current-user endpoints
type AuthHandlers struct {
	users    *auth.Store
	sessions *auth.SessionManager
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(users *auth.Store, sessions *auth.SessionManager) *AuthHandlers {
	return &AuthHandlers{users: users, sessions: sessions}
}

// RegisterRoutes registers authentication routes. Register and login are
// public; the rest require a session.
func (h *AuthHandlers) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/api/register", h.register).Methods("POST")
	public.HandleFunc("/api/login", h.login).Methods("POST")

	protected.HandleFunc("/api/user", h.currentUser).Methods("GET")
	protected.HandleFunc("/api/logout", h.logout).Methods("POST")
	protected.HandleFunc("/api/user/info", h.updateInfo).Methods("PUT")
	protected.HandleFunc("/api/user/password", h.updatePassword).Methods("PUT")
}

// register handles POST /api/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName        string `json:"fullname"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	fieldErrors := validateRegistration(req.FullName, req.Username, req.Email, req.Password, req.PasswordConfirm)
	if len(fieldErrors) > 0 {
		httputil.WriteValidationError(w, fieldErrors)
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

	httputil.WriteSuccess(w, user)
}

// login handles POST /api/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Username   string `json:"username"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	var (
		user *auth.User
		err  error
	)
	if req.Email != "" {
		user, err = h.users.GetByEmail(r.Context(), auth.NormalizeEmail(req.Email))
	} else {
		user, err = h.users.GetByUsername(r.Context(), auth.NormalizeUsername(req.Username))
	}
	if errors.Is(err, auth.ErrUserNotFound) {
		httputil.WriteNotFound(w, "Invalid credentials!")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		httputil.WriteBadRequest(w, "Invalid credentials!")
		return
	}

	token, _, err := h.sessions.Issue(user.ID, req.RememberMe)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to issue session")
		httputil.WriteInternalError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL(req.RememberMe).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	httputil.WriteSuccess(w, map[string]string{"message": "Successfully Logged In!"})
}

// currentUser handles GET /api/user
func (h *AuthHandlers) currentUser(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, middleware.GetUser(r))
}

// logout handles POST /api/logout. Tokens are not revocable server-side;
// logout only clears the cookie.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	httputil.WriteSuccess(w, map[string]string{"message": "Successfully Logged Out!"})
}

// updateInfo handles PUT /api/user/info for the authenticated user
func (h *AuthHandlers) updateInfo(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req struct {
		FullName string `json:"fullname"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
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

	err := h.users.UpdateUser(r.Context(), user)
	if errors.Is(err, auth.ErrCredentialsTaken) {
		httputil.WriteConflict(w, "Email or username already exists")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

// updatePassword handles PUT /api/user/password for the authenticated user
func (h *AuthHandlers) updatePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if fieldErrors := validatePassword(req.Password, req.PasswordConfirm); len(fieldErrors) > 0 {
		httputil.WriteValidationError(w, fieldErrors)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

// credentialsTaken reports whether email or username already belongs to
// another user
func (h *AuthHandlers) credentialsTaken(r *http.Request, email, username, excludeID string) (bool, error) {
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

// validateRegistration checks the signup fields
func validateRegistration(fullName, username, email, password, confirm string) []httputil.FieldError {
	var fieldErrors []httputil.FieldError
	for field, value := range map[string]string{
		"fullname": fullName,
		"username": username,
		"email":    email,
	} {
		if fe := httputil.RequireNonEmpty(value, field); fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
	}
	fieldErrors = append(fieldErrors, validatePassword(password, confirm)...)
	return fieldErrors
}

// validatePassword checks the credential pair shared by register, password
// change, and admin user creation
func validatePassword(password, confirm string) []httputil.FieldError {
	var fieldErrors []httputil.FieldError
	if len(password) < auth.MinPasswordLength {
		fieldErrors = append(fieldErrors, httputil.FieldError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}
	if password != confirm {
		fieldErrors = append(fieldErrors, httputil.FieldError{
			Field:   "password_confirm",
			Message: "passwords do not match",
		})
	}
	return fieldErrors
}
