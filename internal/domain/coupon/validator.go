package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const (
	msgApplied      = "Coupon applied successfully"
	msgInvalidCode  = "Invalid coupon code"
	msgBadCharset   = "Coupon code must contain only letters A-Z"
	msgNotStarted   = "This coupon is not active yet"
	msgExpired      = "This coupon has expired"
	msgBelowMinimum = "Add items worth %s or more to use this coupon"
	msgAboveMaximum = "This coupon is valid only for cart values up to %s"
)

var hundred = decimal.NewFromInt(100)

// Validator checks a coupon code against a cart value.
type Validator interface {
	Validate(ctx context.Context, code string, cartValue decimal.Decimal) (*Result, error)
}

// RepoValidator implements Validator by looking up offers in a Repository.
type RepoValidator struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by repo. Offer windows are
// compared as calendar dates in loc.
func NewRepoValidator(repo Repository, loc *time.Location) *RepoValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &RepoValidator{repo: repo, loc: loc, now: time.Now}
}

// Validate applies the offer rules in order: charset, existence, date window,
// cart bounds, then computes the capped discount. Only lookup failures other
// than an unknown code are returned as errors.
func (v *RepoValidator) Validate(ctx context.Context, code string, cartValue decimal.Decimal) (*Result, error) {
	if !ValidCode(code) {
		return reject(code, cartValue, msgBadCharset), nil
	}

	offer, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return reject(code, cartValue, msgInvalidCode), nil
		}
		return nil, errors.Wrap(err, "lookup offer")
	}

	return Check(offer, cartValue, v.now().In(v.loc)), nil
}

// Check evaluates offer for cartValue on the calendar day of now.
func Check(offer *Offer, cartValue decimal.Decimal, now time.Time) *Result {
	today := calendarDate(now)
	if today.Before(calendarDate(offer.StartDate)) {
		return reject(offer.Code, cartValue, msgNotStarted)
	}
	if today.After(calendarDate(offer.EndDate)) {
		return reject(offer.Code, cartValue, msgExpired)
	}

	if cartValue.LessThan(offer.MinCartValue) {
		return reject(offer.Code, cartValue, fmt.Sprintf(msgBelowMinimum, offer.MinCartValue.StringFixed(2)))
	}
	if cartValue.GreaterThan(offer.MaxCartValue) {
		return reject(offer.Code, cartValue, fmt.Sprintf(msgAboveMaximum, offer.MaxCartValue.StringFixed(2)))
	}

	discount := Discount(offer, cartValue)
	return &Result{
		Code:       offer.Code,
		Valid:      true,
		Discount:   discount,
		FinalValue: cartValue.Sub(discount),
		Message:    msgApplied,
	}
}

// Discount returns cartValue * percent / 100 clamped to the offer's cap and
// rounded to 2 dp.
func Discount(offer *Offer, cartValue decimal.Decimal) decimal.Decimal {
	amount := cartValue.Mul(offer.DiscountPercent).Div(hundred)
	if offer.MaxDiscount.Valid && amount.GreaterThan(offer.MaxDiscount.Decimal) {
		amount = offer.MaxDiscount.Decimal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2)
}

// ValidCode reports whether code is non-empty and made only of A-Z.
func ValidCode(code string) bool {
	if code == "" {
		return false
	}
	for i := range len(code) {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

func reject(code string, cartValue decimal.Decimal, msg string) *Result {
	return &Result{
		Code:       code,
		Valid:      false,
		Discount:   decimal.Zero,
		FinalValue: cartValue,
		Message:    msg,
	}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
