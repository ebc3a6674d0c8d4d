package handler

import (
	"net/http"
	"time"

	"github.com/xenking/grocer-kart/internal/domain/address"
)

type addressRequest struct {
	UserID      int64  `json:"user_id"`
	Mobile      string `json:"mobile"`
	FullAddress string `json:"full_address"`
	Locality    string `json:"locality"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Landmark    string `json:"landmark"`
}

type addressResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FullAddress string    `json:"full_address"`
	Locality    string    `json:"locality"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Pincode     string    `json:"pincode"`
	Landmark    string    `json:"landmark"`
	CreatedAt   time.Time `json:"created_at"`
}

func (req addressRequest) address() address.Address {
	return address.Address{
		UserID:      req.UserID,
		FullAddress: req.FullAddress,
		Locality:    req.Locality,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		Landmark:    req.Landmark,
	}
}

func toAddressResponse(a *address.Address) addressResponse {
	return addressResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		FullAddress: a.FullAddress,
		Locality:    a.Locality,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		Landmark:    a.Landmark,
		CreatedAt:   a.CreatedAt,
	}
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) error {
	userID, err := h.resolveUser(r)
	if err != nil {
		return err
	}
	list, err := h.svc.Addresses.List(r.Context(), userID)
	if err != nil {
		return err
	}
	out := make([]addressResponse, len(list))
	for i := range list {
		out[i] = toAddressResponse(&list[i])
	}
	return writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) error {
	var req addressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	userID, err := h.svc.Users.ResolveID(r.Context(), req.UserID, req.Mobile)
	if err != nil {
		return err
	}
	a := req.address()
	a.UserID = userID
	if err := h.svc.Addresses.Create(r.Context(), &a); err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toAddressResponse(&a))
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req addressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	a := req.address()
	a.ID = id
	if err := h.svc.Addresses.Update(r.Context(), &a); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toAddressResponse(&a))
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Addresses.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) addressPendingOrders(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	pending, err := h.svc.Addresses.HasPendingOrders(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, struct {
		HasPendingOrders bool `json:"hasPendingOrders"`
	}{pending})
}
