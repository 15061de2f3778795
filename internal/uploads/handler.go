// Package uploads stores profile and event photos in object storage.
package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reazulislam1487/event-hub-server/internal/respond"
	"github.com/reazulislam1487/event-hub-server/internal/store"
)

// MaxPhotoSize is the largest accepted upload.
const MaxPhotoSize = 5 << 20

const (
	formField  = "photo"
	keyPrefix  = "photos/"
	publicPath = "/uploads/"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStore is the object storage the handlers use.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

type Handler struct {
	files FileStore
}

func NewHandler(files FileStore) *Handler {
	return &Handler{files: files}
}

type uploadResponse struct {
	Key      string `json:"key"`
	PhotoURL string `json:"photoURL"`
}

// Upload handles POST /uploads/photo with a multipart "photo" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoSize+1<<20)
	file, _, err := r.FormFile(formField)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "photo file is required", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxPhotoSize+1))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "failed to read photo", err)
		return
	}
	if len(data) > MaxPhotoSize {
		respond.Error(w, r, http.StatusRequestEntityTooLarge, "photo exceeds "+strconv.Itoa(MaxPhotoSize>>20)+" MiB", nil)
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		respond.Error(w, r, http.StatusUnsupportedMediaType, "photo must be a JPEG, PNG, GIF or WebP image", nil)
		return
	}

	key := keyPrefix + uuid.New().String() + ext
	if err := h.files.Upload(r.Context(), key, data, contentType); err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "failed to store photo", err)
		return
	}
	respond.JSON(w, http.StatusCreated, uploadResponse{Key: key, PhotoURL: publicPath + key})
}

// Download handles GET /uploads/*.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := path.Clean(chi.URLParam(r, "*"))
	if !strings.HasPrefix(key, keyPrefix) {
		respond.Error(w, r, http.StatusNotFound, "photo not found", nil)
		return
	}

	data, contentType, err := h.files.Download(r.Context(), key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "photo not found", nil)
		return
	case err != nil:
		respond.Error(w, r, http.StatusInternalServerError, "failed to fetch photo", err)
		return
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
