package coupon

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// InvalidOfferError describes why an offer cannot be saved.
type InvalidOfferError struct {
	Reason string
}

func (e *InvalidOfferError) Error() string {
	return "invalid offer: " + e.Reason
}

// Service manages offers for the admin console.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every offer.
func (s *Service) List(ctx context.Context) ([]Offer, error) {
	offers, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list offers")
	}
	return offers, nil
}

// Create validates and stores a new offer. The code is upper-cased first.
func (s *Service) Create(ctx context.Context, o *Offer) error {
	if err := Normalize(o); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return fmt.Errorf("create offer %q: %w", o.Code, err)
	}
	return nil
}

// Update validates and replaces an existing offer.
func (s *Service) Update(ctx context.Context, o *Offer) error {
	if err := Normalize(o); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return fmt.Errorf("update offer %d: %w", o.ID, err)
	}
	return nil
}

// Delete removes an offer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete offer %d: %w", id, err)
	}
	return nil
}

// Normalize uppercases and trims o, then checks the offer rules an admin
// or an import must respect.
func Normalize(o *Offer) error {
	o.Code = strings.ToUpper(strings.TrimSpace(o.Code))
	o.Description = strings.TrimSpace(o.Description)

	switch {
	case !ValidCode(o.Code):
		return &InvalidOfferError{Reason: "code must contain only letters A-Z"}
	case o.StartDate.IsZero() || o.EndDate.IsZero():
		return &InvalidOfferError{Reason: "start and end dates are required"}
	case calendarDate(o.EndDate).Before(calendarDate(o.StartDate)):
		return &InvalidOfferError{Reason: "end date is before start date"}
	case o.MinCartValue.IsNegative():
		return &InvalidOfferError{Reason: "minimum cart value must not be negative"}
	case o.MaxCartValue.LessThan(o.MinCartValue):
		return &InvalidOfferError{Reason: "maximum cart value is below the minimum"}
	case !o.DiscountPercent.IsPositive() || o.DiscountPercent.GreaterThan(hundred):
		return &InvalidOfferError{Reason: "discount percent must be in (0, 100]"}
	case o.MaxDiscount.Valid && !o.MaxDiscount.Decimal.IsPositive():
		return &InvalidOfferError{Reason: "max discount must be positive when set"}
	}
	return nil
}
