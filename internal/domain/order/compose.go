package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/domain/user"
	"github.com/xenking/grocer-kart/internal/domain/validation"
)

// PlaceOrderRequest is a checked-out cart. TotalAmount is the client's
// subtotal and must match the items.
type PlaceOrderRequest struct {
	OrderID     string
	TotalAmount *decimal.Decimal
	OrderDate   time.Time
	Status      Status
	UserID      int64
	Mobile      string
	AddressID   *int64
	CouponCode  string
	Items       []Item
}

// UserResolver finds the user placing an order.
type UserResolver interface {
	ResolveID(ctx context.Context, userID int64, mobile string) (int64, error)
}

// AddressFinder loads a delivery address.
type AddressFinder interface {
	Get(ctx context.Context, id int64) (*address.Address, error)
}

// Quoter prices order lines against the delivery setting.
type Quoter interface {
	Quote(ctx context.Context, lines []pricing.Line) pricing.Breakdown
}

// Service places orders and assembles order views.
type Service struct {
	orders    Repository
	users     UserResolver
	addresses AddressFinder
	coupons   coupon.Validator
	quoter    Quoter
	maxQty    int

	placed metric.Int64Counter
	failed metric.Int64Counter
}

// NewService creates an order Service. maxQty bounds the quantity of a
// single line.
func NewService(
	orders Repository,
	users UserResolver,
	addresses AddressFinder,
	coupons coupon.Validator,
	quoter Quoter,
	maxQty int,
	meter metric.Meter,
) (*Service, error) {
	placed, err := meter.Int64Counter("grocer.orders.placed",
		metric.WithDescription("Orders stored successfully"))
	if err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	failed, err := meter.Int64Counter("grocer.orders.failed",
		metric.WithDescription("Order placements rejected or failed"))
	if err != nil {
		return nil, errors.Wrap(err, "create failed counter")
	}
	return &Service{
		orders:    orders,
		users:     users,
		addresses: addresses,
		coupons:   coupons,
		quoter:    quoter,
		maxQty:    maxQty,
		placed:    placed,
		failed:    failed,
	}, nil
}

// PlaceOrder checks req, recomputes its price server-side and stores the
// order with its items in one transaction. The cart is left untouched.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	o, err := s.placeOrder(ctx, req)
	if err != nil {
		s.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", failureReason(err))))
		return nil, err
	}
	s.placed.Add(ctx, 1)
	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.Int64("user_id", o.UserID),
		zap.String("final_amount", o.FinalAmount.StringFixed(2)),
	)
	return o, nil
}

func (s *Service) placeOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if err := s.checkRequest(&req); err != nil {
		return nil, err
	}

	userID, err := s.users.ResolveID(ctx, req.UserID, req.Mobile)
	if err != nil {
		return nil, errors.Wrap(err, "resolve user")
	}
	if req.AddressID != nil {
		if err := s.checkAddress(ctx, *req.AddressID, userID); err != nil {
			return nil, err
		}
	}

	lines := make([]pricing.Line, len(req.Items))
	for i, it := range req.Items {
		lines[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	quote := s.quoter.Quote(ctx, lines)
	if !quote.Subtotal.Equal(req.TotalAmount.Round(2)) {
		return nil, validation.New("totalAmount", "does not match the sum of item prices "+quote.Subtotal.StringFixed(2))
	}

	discount := decimal.Zero
	if req.CouponCode != "" {
		res, err := s.coupons.Validate(ctx, req.CouponCode, quote.Subtotal)
		if err != nil {
			return nil, errors.Wrap(err, "validate coupon")
		}
		if !res.Valid {
			return nil, &InvalidCouponError{Code: req.CouponCode, Message: res.Message}
		}
		discount = res.Discount
	}

	o := &Order{
		ID:             req.OrderID,
		TotalAmount:    quote.Subtotal,
		OrderDate:      req.OrderDate,
		Status:         req.Status,
		UserID:         userID,
		AddressID:      req.AddressID,
		CouponCode:     req.CouponCode,
		Discount:       discount,
		DeliveryCharge: quote.DeliveryCharge,
		FinalAmount:    pricing.FinalAmount(quote.Subtotal, discount, quote.DeliveryCharge),
		Items:          req.Items,
	}
	if !o.FinalAmount.Equal(o.TotalAmount.Sub(o.Discount).Add(o.DeliveryCharge)) {
		return nil, errors.Errorf("order %s: final amount %s breaks price invariant", o.ID, o.FinalAmount)
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// checkAddress rejects an address that does not exist or belongs to
// another user.
func (s *Service) checkAddress(ctx context.Context, id, userID int64) error {
	a, err := s.addresses.Get(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "get address %d", id)
	}
	if a.UserID != userID {
		return validation.New("address_id", "does not belong to the user")
	}
	return nil
}

func (s *Service) checkRequest(req *PlaceOrderRequest) error {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.CouponCode = strings.TrimSpace(req.CouponCode)

	switch {
	case req.OrderID == "":
		return validation.Missing("orderId")
	case req.TotalAmount == nil:
		return validation.Missing("totalAmount")
	case req.OrderDate.IsZero():
		return validation.Missing("orderDate")
	case req.Status == "":
		return validation.Missing("orderStatus")
	case !req.Status.Valid():
		return validation.New("orderStatus", "must be Pending, Delivered or Cancelled")
	case len(req.Items) == 0:
		return validation.New("items", "at least one item is required")
	case req.UserID <= 0 && strings.TrimSpace(req.Mobile) == "":
		return validation.New("user_id", "user_id or mobile is required")
	case req.AddressID != nil && *req.AddressID <= 0:
		return validation.New("address_id", "must be positive")
	}

	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case it.ProductID <= 0 || it.VariantID <= 0:
			return validation.New(field, "product and variant are required")
		case it.Quantity < 1 || it.Quantity > s.maxQty:
			return validation.New(field, "quantity out of range")
		case it.Price.IsNegative():
			return validation.New(field, "price must not be negative")
		}
	}
	return nil
}

func failureReason(err error) string {
	var (
		vErr *validation.Error
		cErr *InvalidCouponError
	)
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &cErr):
		return "coupon"
	case errors.Is(err, ErrDuplicateOrder):
		return "duplicate"
	case errors.Is(err, address.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, catalog.ErrVariantNotFound):
		return "reference"
	default:
		return "internal"
	}
}
