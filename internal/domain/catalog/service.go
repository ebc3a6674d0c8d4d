package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/grocer-kart/internal/domain/media"
	"github.com/xenking/grocer-kart/internal/domain/validation"
)

const maxSearchLen = 50

// Service implements catalog reads for shoppers and writes for the admin console.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Categories returns every category ordered by name.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	out, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return out, nil
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validation.Missing("name")
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return fmt.Errorf("create category %q: %w", c.Name, err)
	}
	return nil
}

// UpdateCategory renames a category and optionally replaces its image.
func (s *Service) UpdateCategory(ctx context.Context, c *Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return validation.Missing("name")
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return nil
}

// DeleteCategory removes a category that no product references.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// Products lists products matching f with their variants and image.
func (s *Service) Products(ctx context.Context, f Filter) ([]Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	if len(f.Search) > maxSearchLen {
		f.Search = f.Search[:maxSearchLen]
	}
	out, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return out, nil
}

// Product returns a single product.
func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// CreateProduct validates and stores p with its variants.
func (s *Service) CreateProduct(ctx context.Context, p *Product) error {
	if err := cleanProduct(p); err != nil {
		return err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("create product %q: %w", p.Name, err)
	}
	return nil
}

// UpdateProduct validates and replaces p with its variants.
func (s *Service) UpdateProduct(ctx context.Context, p *Product) error {
	if err := cleanProduct(p); err != nil {
		return err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a product and its variants.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// SetStatus enables or disables a product.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return validation.New("status", "must be enabled or disabled")
	}
	if err := s.repo.SetProductStatus(ctx, id, status); err != nil {
		return fmt.Errorf("set product %d status: %w", id, err)
	}
	return nil
}

// SetImage stores img as the product's only image, replacing any previous one.
func (s *Service) SetImage(ctx context.Context, productID int64, img *media.Image) error {
	if productID <= 0 {
		return validation.Missing("product_id")
	}
	if img == nil {
		return validation.Missing("image")
	}
	if err := s.repo.UpsertImage(ctx, productID, *img); err != nil {
		return fmt.Errorf("upsert image for product %d: %w", productID, err)
	}
	return nil
}

func cleanProduct(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Status == "" {
		p.Status = StatusEnabled
	}

	switch {
	case p.Name == "":
		return validation.Missing("name")
	case p.CategoryID <= 0:
		return validation.Missing("category_id")
	case !p.Status.Valid():
		return validation.New("status", "must be enabled or disabled")
	case len(p.Variants) == 0:
		return validation.New("variants", "at least one variant is required")
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		v.QuantityValue = strings.TrimSpace(v.QuantityValue)
		field := fmt.Sprintf("variants[%d]", i)
		switch {
		case v.QuantityValue == "":
			return validation.New(field, "quantity value is required")
		case v.Price.IsNegative():
			return validation.New(field, "price must not be negative")
		case v.MRP.Valid && v.MRP.Decimal.IsNegative():
			return validation.New(field, "mrp must not be negative")
		}
	}
	return nil
}
