package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"dymm/internal/http/respond"
	"dymm/internal/storage"

	"github.com/sirupsen/logrus"
)

const maxPhotoBytes = 5 << 20

// PhotoStore is where avatar photos live; *storage.Client implements it.
type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadPhoto stores the multipart "photo" file and replaces the avatar's
// previous photo.
func (h *AvatarHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if h.Photos == nil {
		respond.Unavailable(w, "Photo storage is not configured")
		return
	}
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	a, err := h.Avatars.Get(r.Context(), id)
	if err != nil {
		h.avatarError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1024)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.BadRequest(w, "Bad request, photo too large")
			return
		}
		respond.BadRequest(w, "Bad request, invalid multipart form")
		return
	}
	file, hdr, err := r.FormFile("photo")
	if err != nil {
		respond.BadRequest(w, "Bad request, photo is required")
		return
	}
	defer file.Close()

	contentType := hdr.Header.Get("Content-Type")
	ext, ok := photoExt[contentType]
	if !ok {
		respond.BadRequest(w, "Bad request, photo must be jpeg, png or webp")
		return
	}

	key := storage.PhotoKey(a.ID, ext)
	if err := h.Photos.Put(r.Context(), key, contentType, file, hdr.Size); err != nil {
		respond.ServerError(w, r, err)
		return
	}
	if err := h.Avatars.SetPhoto(r.Context(), a.ID, key); err != nil {
		respond.ServerError(w, r, err)
		return
	}
	if a.PhotoName != nil && *a.PhotoName != "" {
		if err := h.Photos.Delete(r.Context(), *a.PhotoName); err != nil {
			logrus.WithError(err).WithField("key", *a.PhotoName).Warn("old photo not deleted")
		}
	}

	respond.OK(w, "Ok", map[string]string{"photo_name": key, "photo_url": h.Photos.URL(key)})
}
