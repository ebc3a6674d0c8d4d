package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is not found.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrOfferNotFound is returned when an offer id does not exist.
	ErrOfferNotFound = errors.New("offer not found")
	// ErrDuplicateCode is returned when an offer code is already taken.
	ErrDuplicateCode = errors.New("offer code already exists")
)

// Offer is a percentage coupon bounded by a date window and a cart value range.
type Offer struct {
	ID              int64
	Code            string
	Description     string
	StartDate       time.Time
	EndDate         time.Time
	MinCartValue    decimal.Decimal
	MaxCartValue    decimal.Decimal
	DiscountPercent decimal.Decimal
	// MaxDiscount caps the computed discount when Valid.
	MaxDiscount decimal.NullDecimal
}

// Result is the outcome of checking a code against a cart value. A failed
// check is a Result with Valid=false, not an error.
type Result struct {
	Code       string
	Valid      bool
	Discount   decimal.Decimal
	FinalValue decimal.Decimal
	Message    string
}

// Repository provides lookup and management of offers.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Offer, error)
	List(ctx context.Context) ([]Offer, error)
	Create(ctx context.Context, o *Offer) error
	Update(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id int64) error
}
