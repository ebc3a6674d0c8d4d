package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
)

type validateOfferRequest struct {
	Code      string          `json:"code"`
	CartValue decimal.Decimal `json:"cartValue"`
}

type validateOfferResponse struct {
	Code       string `json:"code"`
	Valid      bool   `json:"valid"`
	Discount   money  `json:"discount"`
	FinalValue money  `json:"finalValue"`
	Message    string `json:"message"`
}

type offerJSON struct {
	ID              int64               `json:"id"`
	Code            string              `json:"code"`
	Description     string              `json:"description"`
	StartDate       string              `json:"start_date"`
	EndDate         string              `json:"end_date"`
	MinCartValue    decimal.Decimal     `json:"min_cart_value"`
	MaxCartValue    decimal.Decimal     `json:"max_cart_value"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	MaxDiscount     decimal.NullDecimal `json:"max_discount"`
}

type deliverySettingJSON struct {
	DeliveryCharge    decimal.Decimal `json:"delivery_charge"`
	FreeDeliveryLimit decimal.Decimal `json:"free_delivery_limit"`
}

type deliverySettingResponse struct {
	DeliveryCharge    money `json:"delivery_charge"`
	FreeDeliveryLimit money `json:"free_delivery_limit"`
}

func toOfferJSON(o *coupon.Offer) offerJSON {
	return offerJSON{
		ID:              o.ID,
		Code:            o.Code,
		Description:     o.Description,
		StartDate:       o.StartDate.Format(time.DateOnly),
		EndDate:         o.EndDate.Format(time.DateOnly),
		MinCartValue:    o.MinCartValue,
		MaxCartValue:    o.MaxCartValue,
		DiscountPercent: o.DiscountPercent,
		MaxDiscount:     o.MaxDiscount,
	}
}

func (h *Handler) offerFrom(req offerJSON) (*coupon.Offer, error) {
	start, err := parseDate("start_date", req.StartDate, h.loc)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate, h.loc)
	if err != nil {
		return nil, err
	}
	return &coupon.Offer{
		Code:            req.Code,
		Description:     req.Description,
		StartDate:       start,
		EndDate:         end,
		MinCartValue:    req.MinCartValue,
		MaxCartValue:    req.MaxCartValue,
		DiscountPercent: req.DiscountPercent,
		MaxDiscount:     req.MaxDiscount,
	}, nil
}

func (h *Handler) validateOffer(w http.ResponseWriter, r *http.Request) error {
	var req validateOfferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.CartValue.IsNegative() {
		return badRequest("cartValue must not be negative")
	}
	res, err := h.svc.Coupons.Validate(r.Context(), req.Code, req.CartValue)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, validateOfferResponse{
		Code:       res.Code,
		Valid:      res.Valid,
		Discount:   money(res.Discount),
		FinalValue: money(res.FinalValue),
		Message:    res.Message,
	})
}

func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.Offers.List(r.Context())
	if err != nil {
		return err
	}
	out := make([]offerJSON, len(list))
	for i := range list {
		out[i] = toOfferJSON(&list[i])
	}
	return writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) error {
	var req offerJSON
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	o, err := h.offerFrom(req)
	if err != nil {
		return err
	}
	if err := h.svc.Offers.Create(r.Context(), o); err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toOfferJSON(o))
}

func (h *Handler) updateOffer(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req offerJSON
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	o, err := h.offerFrom(req)
	if err != nil {
		return err
	}
	o.ID = id
	if err := h.svc.Offers.Update(r.Context(), o); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toOfferJSON(o))
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Offers.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) getDeliverySettings(w http.ResponseWriter, r *http.Request) error {
	s := h.svc.Delivery.Settings(r.Context())
	return writeJSON(w, http.StatusOK, deliverySettingResponse{
		DeliveryCharge:    money(s.DeliveryCharge),
		FreeDeliveryLimit: money(s.FreeDeliveryLimit),
	})
}

func (h *Handler) updateDeliverySettings(w http.ResponseWriter, r *http.Request) error {
	var req deliverySettingJSON
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	s := pricing.DeliverySetting{
		DeliveryCharge:    req.DeliveryCharge,
		FreeDeliveryLimit: req.FreeDeliveryLimit,
	}
	if err := h.svc.Delivery.Update(r.Context(), s); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, deliverySettingResponse{
		DeliveryCharge:    money(s.DeliveryCharge),
		FreeDeliveryLimit: money(s.FreeDeliveryLimit),
	})
}
