package address

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/grocer-kart/internal/domain/validation"
)

// DefaultLimit is the number of addresses a user may keep.
const DefaultLimit = 5

// Service enforces the address book rules.
type Service struct {
	repo  Repository
	limit int
}

// NewService creates a Service allowing at most limit addresses per user.
func NewService(repo Repository, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{repo: repo, limit: limit}
}

// List returns the addresses of userID, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]Address, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list addresses")
	}
	return out, nil
}

// Create validates a and adds it to the owner's address book.
func (s *Service) Create(ctx context.Context, a *Address) error {
	if a.UserID <= 0 {
		return validation.Missing("user_id")
	}
	if err := clean(a); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a, s.limit); err != nil {
		return errors.Wrap(err, "create address")
	}
	return nil
}

// Update replaces the fields of an address not referenced by a pending order.
func (s *Service) Update(ctx context.Context, a *Address) error {
	if err := clean(a); err != nil {
		return err
	}
	if err := s.ensureFree(ctx, a.ID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return errors.Wrap(err, "update address")
	}
	return nil
}

// Delete removes an address not referenced by a pending order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.ensureFree(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete address")
	}
	return nil
}

// HasPendingOrders reports whether a Pending order ships to the address.
func (s *Service) HasPendingOrders(ctx context.Context, id int64) (bool, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return false, errors.Wrap(err, "get address")
	}
	pending, err := s.repo.HasPendingOrders(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "check pending orders")
	}
	return pending, nil
}

func (s *Service) ensureFree(ctx context.Context, id int64) error {
	pending, err := s.HasPendingOrders(ctx, id)
	if err != nil {
		return err
	}
	if pending {
		return ErrInUse
	}
	return nil
}

func clean(a *Address) error {
	a.FullAddress = strings.TrimSpace(a.FullAddress)
	a.Locality = strings.TrimSpace(a.Locality)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Landmark = strings.TrimSpace(a.Landmark)

	if a.FullAddress == "" {
		return validation.Missing("full_address")
	}
	pin, ok := validation.Pincode(a.Pincode)
	if !ok {
		return validation.New("pincode", "must be a 6-digit postal code")
	}
	a.Pincode = pin
	return nil
}
