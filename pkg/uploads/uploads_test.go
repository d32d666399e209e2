package uploads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(t.TempDir(), "/api/uploads")
	require.NoError(t, err)
	return h
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadStoresFileAndReturnsURL(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "image", "photo.PNG", []byte("fake-png"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.URL, "/api/uploads/"))
	assert.True(t, strings.HasSuffix(resp.URL, ".png"))

	stored, err := os.ReadFile(filepath.Join(h.dir, filepath.Base(resp.URL)))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png"), stored)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "wrong_field", "photo.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	h := newTestHandler(t)

	body, contentType := multipartBody(t, "image", "script.sh", []byte("#!/bin/sh"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeReturnsStoredFile(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "abc.png"), []byte("img"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/abc.png", nil)
	req = mux.SetURLVars(req, map[string]string{"filename": "abc.png"})
	rec := httptest.NewRecorder()

	h.Serve(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "img", rec.Body.String())
}

func TestServeBlocksPathTraversal(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/x", nil)
	req = mux.SetURLVars(req, map[string]string{"filename": "../../etc/passwd"})
	rec := httptest.NewRecorder()

	h.Serve(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
