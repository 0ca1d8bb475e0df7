package handler

import (
	"errors"
	"net/http"
	"time"

	"dymm/internal/auth"
	"dymm/internal/avatar"
	"dymm/internal/http/respond"
	"dymm/internal/jobs"
	"dymm/internal/mail"
	"dymm/internal/tag"

	"github.com/go-chi/chi/v5"
)

type AvatarHandler struct {
	Avatars *avatar.Service
	JWT     *auth.JWT
	Codes   mail.CodeStore
	Photos  PhotoStore
	Now     func() time.Time
}

func (h *AvatarHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type authResp struct {
	Avatar       avatar.Avatar `json:"avatar"`
	LanguageID   uint64        `json:"language_id"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

func (h *AvatarHandler) authResponse(w http.ResponseWriter, r *http.Request, a avatar.Avatar, languageID uint64) {
	pair, err := h.JWT.SignPair(a.ID)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", authResp{
		Avatar:       a,
		LanguageID:   languageID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type createReq struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=40"`
	FirstName  string `json:"first_name" validate:"required,max=60"`
	LastName   string `json:"last_name" validate:"required,max=60"`
	LanguageID uint64 `json:"language_id"`
}

func (h *AvatarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if !decode(w, r, &req) {
		return
	}
	a, err := h.Avatars.Create(r.Context(), avatar.CreateInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		LanguageID: req.LanguageID,
	})
	switch {
	case errors.Is(err, avatar.ErrDuplicateEmail):
		respond.Unauthorized(w, "Unauthorized, email already used", respond.MailDuplicate)
		return
	case errors.Is(err, avatar.ErrInvalidLanguage):
		respond.BadRequest(w, "Bad request, invalid language_id")
		return
	case err != nil:
		respond.ServerError(w, r, err)
		return
	}

	languageID := req.LanguageID
	if languageID == 0 {
		languageID = tag.IDEnglish
	}
	h.authResponse(w, r, a, languageID)
}

type authReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=40"`
}

func (h *AvatarHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req authReq
	if !decode(w, r, &req) {
		return
	}
	a, languageID, err := h.Avatars.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, avatar.ErrInvalidEmail):
		respond.Unauthorized(w, "Unauthorized, unknown email", respond.MailInvalid)
		return
	case errors.Is(err, avatar.ErrInvalidPassword):
		respond.Unauthorized(w, "Unauthorized, wrong password", respond.PassInvalid)
		return
	case errors.Is(err, avatar.ErrBlocked):
		respond.Forbidden(w, "Forbidden, avatar blocked", respond.UserInvalid)
		return
	case err != nil:
		respond.ServerError(w, r, err)
		return
	}
	h.authResponse(w, r, a, languageID)
}

// Refresh issues a new access token; it runs behind a refresh-token guard.
func (h *AvatarHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, 0)
	if !ok {
		return
	}
	if _, err := h.Avatars.Get(r.Context(), id); err != nil {
		h.avatarError(w, r, err)
		return
	}
	token, err := h.JWT.Sign(id, auth.KindAccess)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", token)
}

func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	a, err := h.Avatars.Get(r.Context(), id)
	if err != nil {
		h.avatarError(w, r, err)
		return
	}
	respond.OK(w, "Ok", a)
}

func (h *AvatarHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	p, err := h.Avatars.Profile(r.Context(), id)
	if errors.Is(err, avatar.ErrMailNotConfirmed) {
		respond.Unauthorized(w, p.Avatar.Email, respond.MailNeedConfirm)
		return
	}
	if err != nil {
		h.avatarError(w, r, err)
		return
	}
	respond.OK(w, "Ok", p)
}

type updateReq struct {
	AvatarID    uint64 `json:"avatar_id"`
	Target      string `json:"target" validate:"required,oneof=first_name last_name intro email color_code ph_number date_of_birth password"`
	NewInfo     string `json:"new_info" validate:"max=1000"`
	OldPassword string `json:"old_password"`
}

func (h *AvatarHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := caller(w, r, req.AvatarID)
	if !ok {
		return
	}
	err := h.Avatars.UpdateInfo(r.Context(), id, req.Target, req.NewInfo, req.OldPassword)
	switch {
	case errors.Is(err, avatar.ErrInvalidTarget), errors.Is(err, avatar.ErrInvalidValue):
		respond.BadRequest(w, "Bad request, invalid "+req.Target)
		return
	case errors.Is(err, avatar.ErrInvalidPassword):
		respond.Unauthorized(w, "Unauthorized, wrong password", respond.PassInvalid)
		return
	case errors.Is(err, avatar.ErrDuplicateEmail):
		respond.Unauthorized(w, "Unauthorized, email already used", respond.MailDuplicate)
		return
	case err != nil:
		h.avatarError(w, r, err)
		return
	}
	respond.OK(w, "Ok", nil)
}

func (h *AvatarHandler) SetProfileTag(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, 0)
	if !ok {
		return
	}
	profileTagID, ok := urlUint(w, r, "profileTagID")
	if !ok {
		return
	}
	tagID, ok := urlUint(w, r, "tagID")
	if !ok {
		return
	}
	err := h.Avatars.SetProfileTag(r.Context(), id, profileTagID, tagID)
	switch {
	case errors.Is(err, avatar.ErrProfileTagNotFound):
		respond.NotFound(w, "Profile tag not found")
		return
	case errors.Is(err, avatar.ErrInvalidValue):
		respond.BadRequest(w, "Bad request, invalid tag_id")
		return
	case err != nil:
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", nil)
}

// Email option names.
const (
	emailFind   = "find"
	emailVerify = "verify"
	emailCode   = "code"
)

type emailReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"omitempty,len=6,numeric"`
}

// Email checks an address exists (find), mails it a verification code
// (verify) or checks a code sent to it (code).
func (h *AvatarHandler) Email(w http.ResponseWriter, r *http.Request) {
	option := chi.URLParam(r, "option")
	if option != emailFind && option != emailVerify && option != emailCode {
		respond.BadRequest(w, "Bad request, invalid option")
		return
	}
	var req emailReq
	if !decode(w, r, &req) {
		return
	}
	email := avatar.NormalizeEmail(req.Email)

	switch option {
	case emailFind, emailVerify:
		exists, err := h.Avatars.EmailExists(r.Context(), email)
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		if !exists {
			respond.Unauthorized(w, "Unauthorized, unknown email", respond.MailInvalid)
			return
		}
		if option == emailFind {
			respond.OK(w, "Ok", nil)
			return
		}
		code, err := h.Codes.Issue(r.Context(), email)
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		payload := jobs.MailPayload{Email: email, Code: code}
		if err := jobs.Enqueue(h.Avatars.DB.WithContext(r.Context()), 0, jobs.TypeMailVerifyCode, payload, h.now()); err != nil {
			respond.ServerError(w, r, err)
			return
		}
		respond.OK(w, "Ok", nil)

	case emailCode:
		if req.Code == "" {
			respond.BadRequest(w, "Bad request, code is required")
			return
		}
		ok, err := h.Codes.Check(r.Context(), email, req.Code)
		if err != nil {
			respond.ServerError(w, r, err)
			return
		}
		if !ok {
			respond.Unauthorized(w, "Unauthorized, invalid code", respond.CodeInvalid)
			return
		}
		respond.OK(w, "Ok", nil)
	}
}

// avatarError maps a missing avatar to 401 and anything else to 500.
func (h *AvatarHandler) avatarError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, avatar.ErrAvatarNotFound) {
		respond.Unauthorized(w, "Unauthorized, invalid avatar", respond.UserInvalid)
		return
	}
	respond.ServerError(w, r, err)
}
