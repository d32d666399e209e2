package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"widget"}`))
	require.NoError(t, ParseJSON(req, &dest))
	assert.Equal(t, "widget", dest.Name)

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{bad`))
	assert.Error(t, ParseJSON(req, &dest))
}

func TestParsePathString(t *testing.T) {
	req := httptest.NewRequest("GET", "/users/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})

	val, err := ParsePathString(req, "id")
	require.NoError(t, err)
	assert.Equal(t, "abc", val)

	_, err = ParsePathString(req, "missing")
	assert.Error(t, err)
}

func TestParsePathInt64(t *testing.T) {
	req := httptest.NewRequest("GET", "/roles/7", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "7"})

	val, err := ParsePathInt64(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), val)

	req = mux.SetURLVars(req, map[string]string{"id": "seven"})
	_, err = ParsePathInt64(req, "id")
	assert.Error(t, err)
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/users?page=3", nil)
	assert.Equal(t, 3, ParseQueryInt(req, "page", 1))

	req = httptest.NewRequest("GET", "/api/users", nil)
	assert.Equal(t, 1, ParseQueryInt(req, "page", 1))

	req = httptest.NewRequest("GET", "/api/users?page=abc", nil)
	assert.Equal(t, 1, ParseQueryInt(req, "page", 1))
}

func TestParseSearchQueryStripsMarkup(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/products?search=%3Cscript%3Ealert(1)%3C%2Fscript%3Echair", nil)
	assert.Equal(t, "chair", ParseSearchQuery(req))

	req = httptest.NewRequest("GET", "/api/products?search=%3Cb%3Edesk%3C%2Fb%3E", nil)
	assert.Equal(t, "desk", ParseSearchQuery(req))

	req = httptest.NewRequest("GET", "/api/products", nil)
	assert.Equal(t, "", ParseSearchQuery(req))
}
