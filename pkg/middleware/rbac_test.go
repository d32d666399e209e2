package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"admind/pkg/auth"
	"admind/pkg/contextkeys"
	"admind/pkg/rbac"
)

func doGated(t *testing.T, method, resource string, user *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequirePermission(resource)(okHandler)

	req := httptest.NewRequest(method, "/api/"+resource, nil)
	if user != nil {
		req = req.WithContext(contextkeys.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequirePermissionViewAllowsGet(t *testing.T) {
	rec := doGated(t, http.MethodGet, rbac.ResourceProducts, userWith("view_products"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermissionViewRejectsWrite(t *testing.T) {
	rec := doGated(t, http.MethodPost, rbac.ResourceProducts, userWith("view_products"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}

func TestRequirePermissionEditAllowsAllMethods(t *testing.T) {
	user := userWith("edit_orders")
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := doGated(t, method, rbac.ResourceOrders, user)
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestRequirePermissionNoRoleRejected(t *testing.T) {
	rec := doGated(t, http.MethodGet, rbac.ResourceUsers, &auth.User{ID: "u-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionUnrelatedPermissionRejected(t *testing.T) {
	rec := doGated(t, http.MethodGet, rbac.ResourceRoles, userWith("view_users", "edit_users"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionNoUserUnauthenticated(t *testing.T) {
	rec := doGated(t, http.MethodGet, rbac.ResourceUsers, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthenticated"}`, rec.Body.String())
}
