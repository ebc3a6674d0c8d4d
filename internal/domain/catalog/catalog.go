// Package catalog holds categories, products and their variants.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/grocer-kart/internal/domain/media"
)

var (
	// ErrCategoryNotFound is returned when a category id does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrVariantNotFound is returned when a variant does not belong to the product.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrDuplicateName is returned when a category or product name is taken.
	ErrDuplicateName = errors.New("name already exists")
	// ErrInUse is returned when deleting a row other rows still reference.
	ErrInUse = errors.New("still referenced by other records")
)

// Status is the shopper visibility of a product.
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusEnabled || s == StatusDisabled
}

// Category groups products.
type Category struct {
	ID    int64
	Name  string
	Image *media.Image
}

// Variant is a purchasable pack size of a product.
type Variant struct {
	ID            int64
	ProductID     int64
	QuantityValue string
	Price         decimal.Decimal
	// MRP is the optional strike-through reference price.
	MRP decimal.NullDecimal
}

// Product is a catalog item with one or more variants.
type Product struct {
	ID           int64
	Name         string
	Description  string
	CategoryID   int64
	CategoryName string
	Status       Status
	Variants     []Variant
	Image        *media.Image
}

// Filter narrows a product listing.
type Filter struct {
	CategoryID      int64
	Search          string
	IncludeDisabled bool
}

// Repository persists the catalog.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	// UpdateCategory renames c and replaces its image when c.Image is set.
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, f Filter) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetVariant(ctx context.Context, productID, variantID int64) (*Variant, error)
	// CreateProduct inserts p and its variants in one transaction.
	CreateProduct(ctx context.Context, p *Product) error
	// UpdateProduct updates p, updates variants with an id, inserts those
	// without, and deletes the product's variants missing from p.Variants,
	// in one transaction.
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	SetProductStatus(ctx context.Context, id int64, s Status) error
	UpsertImage(ctx context.Context, productID int64, img media.Image) error
}
