package middleware

import (
	"net/http"

	"admind/pkg/httputil"
	"admind/pkg/rbac"
)

// RequirePermission gates a resource behind the caller's role permissions.
// GET requests pass with either the view or edit tag for the resource; all
// other methods require the edit tag. A request with no authenticated user
// in context is rejected as unauthenticated.
func RequirePermission(resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				httputil.WriteUnauthenticated(w, "Unauthenticated")
				return
			}
			if !rbac.Allowed(r.Method, resource, user.Permissions()) {
				httputil.WriteForbidden(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
