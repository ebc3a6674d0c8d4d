package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/invoice"
)

type orderItemJSON struct {
	ProductID int64           `json:"productId"`
	VariantID int64           `json:"variantId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	OrderID     string           `json:"orderId"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
	OrderDate   time.Time        `json:"orderDate"`
	OrderStatus string           `json:"orderStatus"`
	UserID      int64            `json:"user_id"`
	Mobile      string           `json:"mobile"`
	AddressID   *int64           `json:"address_id"`
	CouponCode  string           `json:"couponCode"`
	Items       []orderItemJSON  `json:"items"`
}

type placeOrderResponse struct {
	OrderID        string `json:"orderId"`
	TotalAmount    money  `json:"totalAmount"`
	Discount       money  `json:"discount"`
	DeliveryCharge money  `json:"deliveryCharge"`
	FinalAmount    money  `json:"finalAmount"`
	OrderStatus    string `json:"orderStatus"`
}

type orderItemResponse struct {
	ProductID     int64  `json:"productId"`
	VariantID     int64  `json:"variantId"`
	ProductName   string `json:"productName"`
	QuantityValue string `json:"quantityValue"`
	Quantity      int    `json:"quantity"`
	Price         money  `json:"price"`
}

type deliveryAddressJSON struct {
	ID          int64  `json:"id"`
	FullAddress string `json:"full_address"`
	Locality    string `json:"locality"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Landmark    string `json:"landmark"`
}

type orderViewResponse struct {
	OrderID         string               `json:"orderId"`
	TotalAmount     money                `json:"totalAmount"`
	OrderDate       time.Time            `json:"orderDate"`
	OrderStatus     string               `json:"orderStatus"`
	UserID          int64                `json:"user_id"`
	CustomerName    string               `json:"customerName"`
	Mobile          string               `json:"mobile"`
	CouponCode      string               `json:"couponCode,omitempty"`
	Discount        money                `json:"discount"`
	DeliveryCharge  money                `json:"deliveryCharge"`
	FinalAmount     money                `json:"finalAmount"`
	DeliveryAddress *deliveryAddressJSON `json:"deliveryAddress"`
	Items           []orderItemResponse  `json:"items"`
}

type tabsResponse struct {
	Pending   []orderViewResponse `json:"pending"`
	Delivered []orderViewResponse `json:"delivered"`
	Cancelled []orderViewResponse `json:"cancelled"`
}

type orderStatusRequest struct {
	OrderStatus string `json:"orderStatus"`
}

type dailyEarningJSON struct {
	Date    string `json:"date"`
	Revenue money  `json:"revenue"`
	Orders  int    `json:"orders"`
}

type earningsResponse struct {
	From         string             `json:"from"`
	To           string             `json:"to"`
	Days         []dailyEarningJSON `json:"days"`
	TotalRevenue money              `json:"totalRevenue"`
	TotalOrders  int                `json:"totalOrders"`
}

func (req placeOrderRequest) request() order.PlaceOrderRequest {
	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	return order.PlaceOrderRequest{
		OrderID:     req.OrderID,
		TotalAmount: req.TotalAmount,
		OrderDate:   req.OrderDate,
		Status:      order.Status(req.OrderStatus),
		UserID:      req.UserID,
		Mobile:      req.Mobile,
		AddressID:   req.AddressID,
		CouponCode:  req.CouponCode,
		Items:       items,
	}
}

func toOrderViewResponse(v *order.View) orderViewResponse {
	items := make([]orderItemResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = orderItemResponse{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			ProductName:   it.ProductName,
			QuantityValue: it.QuantityValue,
			Quantity:      it.Quantity,
			Price:         money(it.Price),
		}
	}
	resp := orderViewResponse{
		OrderID:        v.ID,
		TotalAmount:    money(v.TotalAmount),
		OrderDate:      v.OrderDate,
		OrderStatus:    string(v.Status),
		UserID:         v.UserID,
		CustomerName:   v.CustomerName,
		Mobile:         v.Mobile,
		CouponCode:     v.CouponCode,
		Discount:       money(v.Discount),
		DeliveryCharge: money(v.DeliveryCharge),
		FinalAmount:    money(v.FinalAmount),
		Items:          items,
	}
	if a := v.DeliveryAddress; a != nil {
		resp.DeliveryAddress = &deliveryAddressJSON{
			ID:          a.ID,
			FullAddress: a.FullAddress,
			Locality:    a.Locality,
			City:        a.City,
			State:       a.State,
			Pincode:     a.Pincode,
			Landmark:    a.Landmark,
		}
	}
	return resp
}

func toOrderViews(views []order.View) []orderViewResponse {
	out := make([]orderViewResponse, len(views))
	for i := range views {
		out[i] = toOrderViewResponse(&views[i])
	}
	return out
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) error {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	o, err := h.svc.Orders.PlaceOrder(r.Context(), req.request())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:        o.ID,
		TotalAmount:    money(o.TotalAmount),
		Discount:       money(o.Discount),
		DeliveryCharge: money(o.DeliveryCharge),
		FinalAmount:    money(o.FinalAmount),
		OrderStatus:    string(o.Status),
	})
}

// listOrders serves a single user's orders when user_id or mobile is given
// and every order to an admin otherwise.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) error {
	userID, err := queryID(r, "user_id")
	if err != nil {
		return err
	}
	// A non-blank mobile must be valid; the order service rejects it
	// before any query runs.
	f := order.Filter{UserID: userID, Mobile: strings.TrimSpace(r.URL.Query().Get("mobile"))}
	if f.UserID == 0 && f.Mobile == "" {
		if err := h.requireAdmin(r); err != nil {
			return err
		}
	}
	views, err := h.svc.Orders.ListOrders(r.Context(), f)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toOrderViews(views))
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) error {
	userID, err := pathID(r, "userId")
	if err != nil {
		return err
	}
	views, err := h.svc.Orders.ListOrders(r.Context(), order.Filter{UserID: userID})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toOrderViews(views))
}

func (h *Handler) orderTabs(w http.ResponseWriter, r *http.Request) error {
	tabs, err := h.svc.Orders.Tabs(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, tabsResponse{
		Pending:   toOrderViews(tabs.Pending),
		Delivered: toOrderViews(tabs.Delivered),
		Cancelled: toOrderViews(tabs.Cancelled),
	})
}

func (h *Handler) orderInvoice(w http.ResponseWriter, r *http.Request) error {
	v, err := h.svc.Orders.Order(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := invoice.Render(w, v); err != nil {
		// Status is already sent.
		zctx.From(r.Context()).Warn("Invoice write failed",
			zap.String("order_id", v.ID),
			zap.Error(err),
		)
	}
	return nil
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) error {
	var req orderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := h.svc.Orders.UpdateStatus(r.Context(), r.PathValue("id"), order.Status(req.OrderStatus)); err != nil {
		return err
	}
	return writeMessage(w, http.StatusOK, "order status updated")
}

func (h *Handler) earnings(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"), h.loc)
	if err != nil {
		return err
	}
	to, err := parseDate("to", q.Get("to"), h.loc)
	if err != nil {
		return err
	}
	days, err := h.svc.Orders.Earnings(r.Context(), from, to)
	if err != nil {
		return err
	}

	resp := earningsResponse{
		From: from.Format(time.DateOnly),
		To:   to.Format(time.DateOnly),
		Days: make([]dailyEarningJSON, len(days)),
	}
	total := decimal.Zero
	for i, d := range days {
		resp.Days[i] = dailyEarningJSON{
			Date:    d.Day.Format(time.DateOnly),
			Revenue: money(d.Revenue),
			Orders:  d.Orders,
		}
		total = total.Add(d.Revenue)
		resp.TotalOrders += d.Orders
	}
	resp.TotalRevenue = money(total)
	return writeJSON(w, http.StatusOK, resp)
}
