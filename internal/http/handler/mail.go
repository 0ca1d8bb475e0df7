package handler

import (
	"errors"
	"net/http"

	"dymm/internal/auth"
	"dymm/internal/avatar"
	"dymm/internal/http/respond"
	"dymm/internal/mail"

	"github.com/go-chi/chi/v5"
)

const (
	confirmedMsg        = "Your email address has successfully confirmed!"
	alreadyConfirmedMsg = "Account already confirmed. Enjoy Dymm :)"
	invalidLinkMsg      = "The confirmation link is invalid or has expired."
)

type MailHandler struct {
	Avatars *avatar.Service
	JWT     *auth.JWT
}

// Confirm handles the link in a confirmation mail and answers with a page.
func (h *MailHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims, err := h.JWT.Verify(chi.URLParam(r, "token"), auth.KindMail)
	if err != nil {
		h.page(w, r, http.StatusBadRequest, invalidLinkMsg)
		return
	}
	id, err := claims.AvatarID()
	if err != nil {
		h.page(w, r, http.StatusBadRequest, invalidLinkMsg)
		return
	}

	already, err := h.Avatars.ConfirmMail(r.Context(), id, claims.Email)
	switch {
	case errors.Is(err, avatar.ErrAvatarNotFound):
		respond.Forbidden(w, "Forbidden, invalid avatar", respond.UserInvalid)
	case errors.Is(err, avatar.ErrInvalidEmail):
		h.page(w, r, http.StatusBadRequest, invalidLinkMsg)
	case err != nil:
		respond.ServerError(w, r, err)
	case already:
		h.page(w, r, http.StatusOK, alreadyConfirmedMsg)
	default:
		h.page(w, r, http.StatusOK, confirmedMsg)
	}
}

func (h *MailHandler) page(w http.ResponseWriter, r *http.Request, status int, message string) {
	body, err := mail.ResultPage(message)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type confLinkReq struct {
	AvatarID uint64 `json:"avatar_id"`
}

// ResendLink queues another confirmation mail for the caller.
func (h *MailHandler) ResendLink(w http.ResponseWriter, r *http.Request) {
	var req confLinkReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := caller(w, r, req.AvatarID)
	if !ok {
		return
	}
	if err := h.Avatars.ResendConfirm(r.Context(), id); err != nil {
		if errors.Is(err, avatar.ErrAvatarNotFound) {
			respond.Forbidden(w, "Forbidden, invalid avatar", respond.UserInvalid)
			return
		}
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", nil)
}
