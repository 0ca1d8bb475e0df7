package handler

import (
	"errors"
	"net/http"
	"strconv"

	"dymm/internal/auth"
	"dymm/internal/bookmark"
	"dymm/internal/http/respond"
	"dymm/internal/lifelog"
	"dymm/internal/tag"

	"github.com/go-chi/chi/v5"
)

type TagHandler struct {
	Tags      *tag.Store
	Bookmarks *bookmark.Service
	Logs      *lifelog.Service
}

type tagSetResp struct {
	Tag            *tag.Tag  `json:"tag"`
	SubTags        []tag.Tag `json:"sub_tags"`
	BookmarksTotal int64     `json:"bookmarks_total"`
	BookmarkID     *uint64   `json:"bookmark_id,omitempty"`
}

// Set lists a tag's children. On the avatar route a history tag lists the
// avatar's recent logs and a bookmark super lists its bookmarks. An unknown
// tag lists nothing.
func (h *TagHandler) Set(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "tagID")
	if !ok {
		return
	}
	sort, err := tag.ParseSort(chi.URLParam(r, "sort"))
	if err != nil {
		respond.BadRequest(w, "Bad request, invalid sort")
		return
	}
	page := 0
	if chi.URLParam(r, "page") != "" {
		if page, ok = urlInt(w, r, "page"); !ok {
			return
		}
	}
	avatarID, _ := auth.AvatarIDFromContext(r.Context())

	t, err := h.Tags.Get(r.Context(), id)
	if errors.Is(err, tag.ErrNotFound) {
		respond.OK(w, "Ok", tagSetResp{SubTags: []tag.Tag{}})
		return
	}
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	if avatarID != 0 && t.TagType == tag.TypeHistory {
		hist, err := h.Logs.History(r.Context(), avatarID)
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		respond.OK(w, "Ok", map[string]any{"tag": t, "sub_tags": hist})
		return
	}
	if avatarID != 0 && tag.IsBookmarkSuper(t.ID) {
		marks, err := h.Bookmarks.List(r.Context(), avatarID, t.ID)
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		respond.OK(w, "Ok", map[string]any{"tag": t, "sub_tags": marks})
		return
	}

	// drug tags below the root always sort by english name
	if t.Class1 == tag.ClassDrug && t.Division1 != 0 {
		sort = tag.SortEng
	}
	subs, err := h.Tags.Children(r.Context(), t.ID, sort, page)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	total, err := h.Bookmarks.Total(r.Context(), t.ID)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	resp := tagSetResp{Tag: t, SubTags: subs, BookmarksTotal: total}
	if resp.SubTags == nil {
		resp.SubTags = []tag.Tag{}
	}
	if avatarID != 0 && t.TagType.Loggable() {
		b, err := h.Bookmarks.Find(r.Context(), avatarID, t.ID)
		switch {
		case err == nil:
			resp.BookmarkID = &b.ID
		case !errors.Is(err, bookmark.ErrNotFound):
			respond.ServerError(w, r, err)
			return
		}
	}
	respond.OK(w, "Ok", resp)
}

type matchEntry struct {
	ID      uint64 `json:"id"`
	Idx     int    `json:"idx"`
	EngName string `json:"eng_name"`
	KorName string `json:"kor_name"`
	JpnName string `json:"jpn_name"`
}

// Match lists the options a profile tag chooses from with the index of the
// current choice. When is_selected is false tagID is the category itself.
func (h *TagHandler) Match(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "tagID")
	if !ok {
		return
	}
	selected, err := strconv.ParseBool(chi.URLParam(r, "isSelected"))
	if err != nil {
		respond.BadRequest(w, "Bad request, invalid is_selected")
		return
	}

	superID := id
	if selected {
		super, err := h.Tags.SuperOf(r.Context(), id)
		if errors.Is(err, tag.ErrNotFound) {
			respond.OK(w, "Ok", map[string]any{"sub_tags": []matchEntry{}, "select_idx": 0})
			return
		}
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		superID = super.ID
	}

	tags, idx, err := h.Tags.ChildrenWithIndex(r.Context(), superID, id)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	out := make([]matchEntry, 0, len(tags))
	for i, t := range tags {
		out = append(out, matchEntry{ID: t.ID, Idx: i, EngName: t.EngName, KorName: t.KorName, JpnName: t.JpnName})
	}
	respond.OK(w, "Ok", map[string]any{"sub_tags": out, "select_idx": idx})
}

type searchReq struct {
	KeyWord string `json:"key_word" validate:"required,notblank,max=100"`
}

// Search finds tags one level below tagID whose name contains key_word.
// An unknown tagID finds nothing.
func (h *TagHandler) Search(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "tagID")
	if !ok {
		return
	}
	page, ok := urlInt(w, r, "page")
	if !ok {
		return
	}
	var req searchReq
	if !decode(w, r, &req) {
		return
	}

	super, err := h.Tags.Get(r.Context(), id)
	if errors.Is(err, tag.ErrNotFound) {
		respond.OK(w, "Ok", map[string]any{"tag": nil, "sub_tags": []tag.Tag{}})
		return
	}
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}

	found, err := h.Tags.SearchDescendants(r.Context(), *super, req.KeyWord, page)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	if found == nil {
		found = []tag.Tag{}
	}
	respond.OK(w, "Ok", map[string]any{"tag": super, "sub_tags": found})
}
