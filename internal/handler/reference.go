package handler

import "net/http"

type contactCenterResponse struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	Hours string `json:"hours"`
}

func (h *Handler) contactCenter(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, contactCenterResponse{
		Phone: h.ref.ContactPhone,
		Email: h.ref.ContactEmail,
		Hours: h.ref.ContactHours,
	})
}

func (h *Handler) pincodes(w http.ResponseWriter, _ *http.Request) error {
	codes := h.ref.Pincodes
	if codes == nil {
		codes = []string{}
	}
	return writeJSON(w, http.StatusOK, struct {
		Pincodes []string `json:"pincodes"`
	}{codes})
}
