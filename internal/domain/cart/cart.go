// Package cart manages shopper cart lines and prices them on read.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/grocer-kart/internal/domain/media"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 5

// ErrLineNotFound is returned when removing a line that is not in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// Line is a stored cart row keyed by user, product and variant.
type Line struct {
	UserID    int64
	ProductID int64
	VariantID int64
	Quantity  int
}

// Item is a cart line joined to its product and variant.
type Item struct {
	ProductID     int64
	VariantID     int64
	ProductName   string
	QuantityValue string
	Price         decimal.Decimal
	MRP           decimal.NullDecimal
	Quantity      int
	Image         *media.Image
}

// View is a priced cart.
type View struct {
	Items     []Item
	Breakdown pricing.Breakdown
}

// Repository persists cart lines.
type Repository interface {
	// Upsert stores l, replacing the quantity of an existing line.
	Upsert(ctx context.Context, l Line) error
	Remove(ctx context.Context, userID, productID, variantID int64) error
	Clear(ctx context.Context, userID int64) error
	Items(ctx context.Context, userID int64) ([]Item, error)
}

// Pricer prices cart lines.
type Pricer interface {
	Quote(ctx context.Context, lines []pricing.Line) pricing.Breakdown
}
