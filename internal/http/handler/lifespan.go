package handler

import (
	"errors"
	"net/http"
	"time"

	"dymm/internal/avatar"
	"dymm/internal/http/respond"
	"dymm/internal/lifespan"
)

type LifespanHandler struct {
	Avatars *avatar.Service
	Ranker  *lifespan.Ranker
	Now     func() time.Time
}

func (h *LifespanHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// LifeSpan returns the days the avatar has left and refreshes its ranked
// full lifespan.
func (h *LifespanHandler) LifeSpan(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	days, err := h.Avatars.EstimateLifespan(r.Context(), id, h.now())
	switch {
	case errors.Is(err, avatar.ErrAvatarNotFound):
		respond.Unauthorized(w, "Unauthorized, invalid avatar", respond.UserInvalid)
		return
	case errors.Is(err, avatar.ErrScoreUnavailable):
		respond.Unauthorized(w, "Unauthorized, no condition score yet", respond.ScoreUnavailable)
		return
	case errors.Is(err, avatar.ErrBirthDateUnavailable):
		respond.Unauthorized(w, "Unauthorized, date of birth not set", respond.BirthDateUnavailable)
		return
	case err != nil:
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", days)
}

// Rankings lists a leaderboard page starting at the rank the starting code
// names.
func (h *LifespanHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	bracket, ok := urlInt(w, r, "bracket")
	if !ok {
		return
	}
	starting, ok := urlInt(w, r, "starting")
	if !ok {
		return
	}
	page, ok := urlInt(w, r, "page")
	if !ok {
		return
	}
	window, err := lifespan.BracketWindow(bracket, h.now())
	if err != nil {
		respond.BadRequest(w, "Bad request, invalid bracket")
		return
	}

	rows, err := h.Ranker.Page(r.Context(), window, lifespan.StartingRank(starting), page, lifespan.DefaultPageSize)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", map[string]any{"rankings": rows})
}

// RankOf returns the avatar's leaderboard entry. An unranked avatar gets a
// rank 0 placeholder carrying its own lifespan.
func (h *LifespanHandler) RankOf(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	bracket, ok := urlInt(w, r, "bracket")
	if !ok {
		return
	}
	window, err := lifespan.BracketWindow(bracket, h.now())
	if err != nil {
		respond.BadRequest(w, "Bad request, invalid bracket")
		return
	}

	entry, err := h.Ranker.RankOf(r.Context(), id, window)
	if errors.Is(err, lifespan.ErrNotRanked) {
		a, err := h.Avatars.Get(r.Context(), id)
		if errors.Is(err, avatar.ErrAvatarNotFound) {
			respond.Unauthorized(w, "Unauthorized, invalid avatar", respond.UserInvalid)
			return
		}
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		entry = lifespan.Entry{
			AvatarID:     a.ID,
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			PhotoName:    a.PhotoName,
			ColorCode:    a.ColorCode,
			FullLifespan: a.FullLifespan,
		}
	} else if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", entry)
}
