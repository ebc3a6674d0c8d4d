package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/domain/validation"
)

// VariantFinder resolves a variant of a product.
type VariantFinder interface {
	GetVariant(ctx context.Context, productID, variantID int64) (*catalog.Variant, error)
}

// Service implements cart mutations and the priced cart view.
type Service struct {
	repo     Repository
	variants VariantFinder
	pricer   Pricer
	maxQty   int
}

// NewService creates a Service. maxQty is clamped to [1, MaxQuantity].
func NewService(repo Repository, variants VariantFinder, pricer Pricer, maxQty int) *Service {
	if maxQty <= 0 || maxQty > MaxQuantity {
		maxQty = MaxQuantity
	}
	return &Service{repo: repo, variants: variants, pricer: pricer, maxQty: maxQty}
}

// Upsert sets the quantity of a line. The last write wins.
func (s *Service) Upsert(ctx context.Context, l Line) error {
	switch {
	case l.UserID <= 0:
		return validation.Missing("user_id")
	case l.ProductID <= 0:
		return validation.Missing("product_id")
	case l.VariantID <= 0:
		return validation.Missing("variant_id")
	case l.Quantity < 1 || l.Quantity > s.maxQty:
		return validation.New("quantity", fmt.Sprintf("must be between 1 and %d", s.maxQty))
	}

	if _, err := s.variants.GetVariant(ctx, l.ProductID, l.VariantID); err != nil {
		return errors.Wrap(err, "lookup variant")
	}
	if err := s.repo.Upsert(ctx, l); err != nil {
		return errors.Wrap(err, "upsert cart line")
	}
	return nil
}

// Remove deletes one line from the cart.
func (s *Service) Remove(ctx context.Context, userID, productID, variantID int64) error {
	if userID <= 0 {
		return validation.Missing("user_id")
	}
	if err := s.repo.Remove(ctx, userID, productID, variantID); err != nil {
		return errors.Wrap(err, "remove cart line")
	}
	return nil
}

// Clear empties the cart of userID.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return validation.Missing("user_id")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

// View returns the cart of userID with a fresh price breakdown.
func (s *Service) View(ctx context.Context, userID int64) (*View, error) {
	if userID <= 0 {
		return nil, validation.Missing("user_id")
	}
	items, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}

	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return &View{
		Items:     items,
		Breakdown: s.pricer.Quote(ctx, lines),
	}, nil
}
