// Package order composes orders from checked-out carts and assembles the
// order views used by shopper history, admin triage and invoices.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when an order id does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned when an order id is already taken.
	ErrDuplicateOrder = errors.New("order already exists")
)

// InvalidCouponError is returned when the coupon on an order does not apply
// to the order's subtotal.
type InvalidCouponError struct {
	Code    string
	Message string
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Message)
}

// Status is the lifecycle state of an order. Any status may be set from any
// other.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every known status in tab order.
var Statuses = []Status{StatusPending, StatusDelivered, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed order with its price snapshot.
type Order struct {
	ID             string
	TotalAmount    decimal.Decimal
	OrderDate      time.Time
	Status         Status
	UserID         int64
	AddressID      *int64
	CouponCode     string
	Discount       decimal.Decimal
	DeliveryCharge decimal.Decimal
	FinalAmount    decimal.Decimal
	Items          []Item
}

// Item is an order line. Price is the unit price at order time.
type Item struct {
	ProductID int64
	VariantID int64
	Quantity  int
	Price     decimal.Decimal
}

// DeliveryAddress is the address an order ships to.
type DeliveryAddress struct {
	ID          int64
	FullAddress string
	Locality    string
	City        string
	State       string
	Pincode     string
	Landmark    string
}

// ItemView is an order line joined to its product and variant.
type ItemView struct {
	OrderID       string
	ProductID     int64
	VariantID     int64
	ProductName   string
	QuantityValue string
	Quantity      int
	Price         decimal.Decimal
}

// View is an order joined to its customer, address and items.
type View struct {
	ID             string
	TotalAmount    decimal.Decimal
	OrderDate      time.Time
	Status         Status
	UserID         int64
	CustomerName   string
	Mobile         string
	CouponCode     string
	Discount       decimal.Decimal
	DeliveryCharge decimal.Decimal
	FinalAmount    decimal.Decimal
	// DeliveryAddress is nil once the address has been deleted.
	DeliveryAddress *DeliveryAddress
	Items           []ItemView
}

// Filter selects orders by owner. The zero Filter selects every order.
type Filter struct {
	UserID int64
	Mobile string
}

// Tabs is the admin triage grouping of orders by status.
type Tabs struct {
	Pending   []View
	Delivered []View
	Cancelled []View
}

// DailyEarning is the delivered revenue of one calendar day.
type DailyEarning struct {
	Day     time.Time
	Revenue decimal.Decimal
	Orders  int
}

// Repository persists orders.
type Repository interface {
	// Create inserts o and its items atomically.
	Create(ctx context.Context, o *Order) error
	// Headers returns matching orders without items, newest first with ties
	// broken by order id descending.
	Headers(ctx context.Context, f Filter) ([]View, error)
	Header(ctx context.Context, id string) (*View, error)
	// Items returns the lines of every order in ids.
	Items(ctx context.Context, ids []string) ([]ItemView, error)
	UpdateStatus(ctx context.Context, id string, s Status) error
	// Earnings aggregates delivered orders per day for days in [from, to].
	Earnings(ctx context.Context, from, to time.Time) ([]DailyEarning, error)
}
