package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admind/pkg/rbac"
)

func newRoleHandlers(t *testing.T) (*RoleHandlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoleHandlers(rbac.NewStore(db)), mock
}

func TestPermissionsList(t *testing.T) {
	h, mock := newRoleHandlers(t)

	mock.ExpectQuery("SELECT id, name FROM permissions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "view_users").
			AddRow(2, "edit_users"))

	req := httptest.NewRequest(http.MethodGet, "/api/permissions", nil)
	rec := httptest.NewRecorder()

	h.listPermissions(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "edit_users")
}

func TestRoleCreateRequiresName(t *testing.T) {
	h, _ := newRoleHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/roles", strings.NewReader(`{"permissions":[1,2]}`))
	rec := httptest.NewRecorder()

	h.create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")
}

func TestRoleCreateReturns201WithPermissions(t *testing.T) {
	h, mock := newRoleHandlers(t)

	mock.ExpectQuery("INSERT INTO roles").
		WithArgs("Support").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("DELETE FROM role_permissions").
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO role_permissions").
		WithArgs(int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, name FROM roles").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "Support"))
	mock.ExpectQuery("SELECT p.id, p.name").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "view_users"))

	req := httptest.NewRequest(http.MethodPost, "/api/roles", strings.NewReader(`{"name":"Support","permissions":[1]}`))
	rec := httptest.NewRecorder()

	h.create(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "view_users")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGetNotFound(t *testing.T) {
	h, mock := newRoleHandlers(t)

	mock.ExpectQuery("SELECT id, name FROM roles").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	req := httptest.NewRequest(http.MethodGet, "/api/roles/99", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "99"})
	rec := httptest.NewRecorder()

	h.get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoleDeleteStillAssigned(t *testing.T) {
	h, mock := newRoleHandlers(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role_id").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	req := httptest.NewRequest(http.MethodDelete, "/api/roles/2", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "2"})
	rec := httptest.NewRecorder()

	h.delete(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"Role is still assigned to users"}`, rec.Body.String())
}

func TestRoleDeleteUnreferenced(t *testing.T) {
	h, mock := newRoleHandlers(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role_id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM role_permissions").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM roles").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/roles/3", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "3"})
	rec := httptest.NewRecorder()

	h.delete(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
