package uploads

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"admind/pkg/httputil"
	"admind/pkg/observability"
)

// MaxUploadSize caps a single image upload at 10 MiB
const MaxUploadSize = 10 << 20

// Handler accepts image uploads and serves stored files
type Handler struct {
	dir     string
	baseURL string
}

// NewHandler creates an upload handler storing files in dir. baseURL is the
// externally visible prefix returned to clients, e.g. "/api/uploads".
func NewHandler(dir, baseURL string) (*Handler, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Handler{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload stores the "image" form file under a random name, keeping only the
// original extension, and returns the URL it will be served from
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		httputil.WriteBadRequest(w, "unsupported image type")
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to store upload")
		httputil.WriteMessage(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to store upload")
		httputil.WriteMessage(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"url": h.baseURL + "/" + name,
	})
}

// Serve returns a stored file by its generated name. The name is cleaned to
// its base so path traversal cannot escape the upload directory.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	raw, err := httputil.ParsePathString(r, "filename")
	if err != nil {
		httputil.WriteNotFound(w, "file not found")
		return
	}
	name := filepath.Base(raw)

	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		httputil.WriteNotFound(w, "file not found")
		return
	}
	http.ServeFile(w, r, path)
}
