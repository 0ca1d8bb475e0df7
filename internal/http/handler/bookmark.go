package handler

import (
	"errors"
	"net/http"

	"dymm/internal/bookmark"
	"dymm/internal/http/respond"
)

type BookmarkHandler struct {
	Bookmarks *bookmark.Service
}

type bookmarkReq struct {
	AvatarID uint64 `json:"avatar_id"`
	TagID    uint64 `json:"tag_id" validate:"required"`
}

// Toggle bookmarks a tag, or flips the existing bookmark on it.
func (h *BookmarkHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req bookmarkReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := caller(w, r, req.AvatarID)
	if !ok {
		return
	}
	b, total, err := h.Bookmarks.Toggle(r.Context(), id, req.TagID)
	if err != nil {
		bookmarkError(w, r, err)
		return
	}
	respond.OK(w, "Ok", map[string]any{
		"bookmark_id":     b.ID,
		"is_active":       b.IsActive,
		"bookmarks_total": total,
	})
}

// ToggleByID flips one bookmark and returns the tag's new total.
func (h *BookmarkHandler) ToggleByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	bookmarkID, ok := urlUint(w, r, "bookmarkID")
	if !ok {
		return
	}
	_, total, err := h.Bookmarks.ToggleByID(r.Context(), id, bookmarkID)
	if err != nil {
		bookmarkError(w, r, err)
		return
	}
	respond.OK(w, "Ok", total)
}

func bookmarkError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bookmark.ErrNotFound):
		respond.NotFound(w, "Bookmark not found")
	case errors.Is(err, bookmark.ErrTagNotFound):
		respond.BadRequest(w, "Bad request, unknown tag_id")
	case errors.Is(err, bookmark.ErrNotBookmarkable):
		respond.BadRequest(w, "Bad request, tag cannot be bookmarked")
	default:
		respond.ServerError(w, r, err)
	}
}
