package middleware

import (
	"context"
	"errors"
	"net/http"

	"admind/pkg/auth"
	"admind/pkg/contextkeys"
	"admind/pkg/httputil"
)

// UserLoader resolves a verified user ID to a full user record with role and
// permissions populated. *auth.Store satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*auth.User, error)
}

// SessionAuth authenticates requests from the session cookie. The resolved
// user, with role and permissions, is attached to the request context. The
// user is re-read on every request, so a permission revocation is effective
// immediately.
type SessionAuth struct {
	sessions *auth.SessionManager
	users    UserLoader
}

// NewSessionAuth creates the session authentication middleware
func NewSessionAuth(sessions *auth.SessionManager, users UserLoader) *SessionAuth {
	return &SessionAuth{sessions: sessions, users: users}
}

// Handler wraps an HTTP handler with session authentication
func (m *SessionAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookie)
		if err != nil {
			httputil.WriteUnauthenticated(w, "Unauthenticated")
			return
		}

		userID, err := m.sessions.Verify(cookie.Value)
		if err != nil {
			httputil.WriteUnauthenticated(w, "Unauthenticated")
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if errors.Is(err, auth.ErrUserNotFound) {
			// A deleted user holding a live token is unauthenticated, not an
			// internal error.
			httputil.WriteUnauthenticated(w, "Unauthenticated")
			return
		}
		if err != nil {
			httputil.WriteInternalError(w, err)
			return
		}

		ctx := contextkeys.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request, nil when the
// request did not pass through SessionAuth
func GetUser(r *http.Request) *auth.User {
	user, _ := r.Context().Value(contextkeys.UserKey).(*auth.User)
	return user
}
