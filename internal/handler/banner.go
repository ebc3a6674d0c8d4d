package handler

import (
	"net/http"
	"time"

	"github.com/xenking/grocer-kart/internal/domain/banner"
	"github.com/xenking/grocer-kart/internal/domain/media"
)

type bannerRequest struct {
	Title  string `json:"title"`
	Image  string `json:"image"`
	Active *bool  `json:"active"`
}

type bannerResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toBannerResponse(b *banner.Banner) bannerResponse {
	return bannerResponse{
		ID:        b.ID,
		Title:     b.Title,
		Image:     b.Image.DataURI(),
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
	}
}

// listBanners shows active banners, or every banner to an admin asking
// with include_inactive=true.
func (h *Handler) listBanners(w http.ResponseWriter, r *http.Request) error {
	all := queryBool(r, "include_inactive")
	if all {
		if err := h.requireAdmin(r); err != nil {
			return err
		}
	}
	list, err := h.svc.Banners.List(r.Context(), all)
	if err != nil {
		return err
	}
	out := make([]bannerResponse, len(list))
	for i := range list {
		out[i] = toBannerResponse(&list[i])
	}
	return writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createBanner(w http.ResponseWriter, r *http.Request) error {
	var req bannerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	img, err := media.Decode(req.Image)
	if err != nil {
		return err
	}
	b := &banner.Banner{Title: req.Title, Image: *img, Active: true}
	if req.Active != nil {
		b.Active = *req.Active
	}
	if err := h.svc.Banners.Create(r.Context(), b); err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toBannerResponse(b))
}

func (h *Handler) updateBanner(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req bannerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Active == nil {
		return badRequest("active is required")
	}
	if err := h.svc.Banners.SetActive(r.Context(), id, *req.Active); err != nil {
		return err
	}
	return writeMessage(w, http.StatusOK, "banner updated")
}

func (h *Handler) deleteBanner(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Banners.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
