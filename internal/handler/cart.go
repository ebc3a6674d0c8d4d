package handler

import (
	"net/http"

	"github.com/xenking/grocer-kart/internal/domain/cart"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
)

type cartLineRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type cartItemResponse struct {
	ProductID     int64  `json:"product_id"`
	VariantID     int64  `json:"variant_id"`
	ProductName   string `json:"product_name"`
	QuantityValue string `json:"quantity_value"`
	Price         money  `json:"price"`
	MRP           *money `json:"mrp"`
	Quantity      int    `json:"quantity"`
	Image         string `json:"image,omitempty"`
}

type breakdownJSON struct {
	Subtotal                       money `json:"subtotal"`
	IsFreeDelivery                 bool  `json:"isFreeDelivery"`
	DeliveryCharge                 money `json:"deliveryCharge"`
	AmountRemainingForFreeDelivery money `json:"amountRemainingForFreeDelivery"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	breakdownJSON
}

func toBreakdownJSON(b pricing.Breakdown) breakdownJSON {
	return breakdownJSON{
		Subtotal:                       money(b.Subtotal),
		IsFreeDelivery:                 b.IsFreeDelivery,
		DeliveryCharge:                 money(b.DeliveryCharge),
		AmountRemainingForFreeDelivery: money(b.AmountRemainingForFreeDelivery),
	}
}

func toCartResponse(v *cart.View) cartResponse {
	items := make([]cartItemResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = cartItemResponse{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			ProductName:   it.ProductName,
			QuantityValue: it.QuantityValue,
			Price:         money(it.Price),
			MRP:           nullMoney(it.MRP),
			Quantity:      it.Quantity,
			Image:         it.Image.DataURI(),
		}
	}
	return cartResponse{Items: items, breakdownJSON: toBreakdownJSON(v.Breakdown)}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) error {
	userID, err := queryID(r, "user_id")
	if err != nil {
		return err
	}
	v, err := h.svc.Cart.View(r.Context(), userID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toCartResponse(v))
}

func (h *Handler) upsertCart(w http.ResponseWriter, r *http.Request) error {
	var req cartLineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	err := h.svc.Cart.Upsert(r.Context(), cart.Line{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return err
	}
	return writeMessage(w, http.StatusOK, "cart updated")
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) error {
	var ids [3]int64
	for i, name := range []string{"user_id", "product_id", "variant_id"} {
		id, err := queryID(r, name)
		if err != nil {
			return err
		}
		ids[i] = id
	}
	if err := h.svc.Cart.Remove(r.Context(), ids[0], ids[1], ids[2]); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) error {
	userID, err := queryID(r, "user_id")
	if err != nil {
		return err
	}
	if err := h.svc.Cart.Clear(r.Context(), userID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
