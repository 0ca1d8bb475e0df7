package handler

import (
	"net/http"

	"dymm/internal/banner"
	"dymm/internal/http/respond"
)

type BannerHandler struct {
	Banners *banner.Service
}

func (h *BannerHandler) List(w http.ResponseWriter, r *http.Request) {
	banners, err := h.Banners.List(r.Context())
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", banners)
}
