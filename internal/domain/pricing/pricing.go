// Package pricing turns cart lines and the delivery setting into a price
// breakdown. Everything here except Quoter is pure.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is a priced cart line.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// DeliverySetting is the singleton delivery configuration. A zero value
// means delivery is always free.
type DeliverySetting struct {
	DeliveryCharge    decimal.Decimal
	FreeDeliveryLimit decimal.Decimal
}

// Breakdown is the result of pricing a cart.
type Breakdown struct {
	Subtotal                       decimal.Decimal
	IsFreeDelivery                 bool
	DeliveryCharge                 decimal.Decimal
	AmountRemainingForFreeDelivery decimal.Decimal
}

// SettingsRepository reads and writes the delivery setting row.
type SettingsRepository interface {
	GetDeliverySetting(ctx context.Context) (*DeliverySetting, error)
	UpdateDeliverySetting(ctx context.Context, s DeliverySetting) error
}

// Subtotal returns the sum of price * quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Calculate prices lines against the delivery setting.
func Calculate(lines []Line, s DeliverySetting) Breakdown {
	subtotal := Subtotal(lines)

	b := Breakdown{
		Subtotal:                       subtotal.Round(2),
		IsFreeDelivery:                 subtotal.GreaterThanOrEqual(s.FreeDeliveryLimit),
		DeliveryCharge:                 decimal.Zero,
		AmountRemainingForFreeDelivery: decimal.Zero,
	}
	if !b.IsFreeDelivery {
		b.DeliveryCharge = s.DeliveryCharge.Round(2)
		b.AmountRemainingForFreeDelivery = s.FreeDeliveryLimit.Sub(subtotal).Round(2)
	}
	return b
}

// FinalAmount is the amount payable for an order.
func FinalAmount(subtotal, discount, deliveryCharge decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(deliveryCharge).Round(2)
}
