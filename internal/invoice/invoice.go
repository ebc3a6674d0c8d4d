// Package invoice renders an order view as a fixed-width printable invoice.
package invoice

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/xenking/grocer-kart/internal/domain/order"
)

const dateLayout = "02 Jan 2006 15:04"

// Render writes a printable invoice for v to w.
func Render(w io.Writer, v *order.View) error {
	var b strings.Builder
	fmt.Fprintf(&b, "INVOICE  %s\n", v.ID)
	fmt.Fprintf(&b, "Date:    %s\n", v.OrderDate.Format(dateLayout))
	fmt.Fprintf(&b, "Status:  %s\n", v.Status)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", v.CustomerName, v.Mobile)
	b.WriteString(deliverTo(v.DeliveryAddress))
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "write header")
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Item", "Pack", "Qty", "Price", "Amount")
	for i, it := range v.Items {
		amount := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		row := []string{
			strconv.Itoa(i + 1),
			it.ProductName,
			it.QuantityValue,
			strconv.Itoa(it.Quantity),
			it.Price.StringFixed(2),
			amount.StringFixed(2),
		}
		if err := table.Append(row); err != nil {
			return errors.Wrapf(err, "append item %d", i+1)
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, "render items")
	}

	b.Reset()
	fmt.Fprintf(&b, "\n%-18s %12s\n", "Subtotal", v.TotalAmount.StringFixed(2))
	if v.CouponCode != "" {
		fmt.Fprintf(&b, "%-18s %12s\n", "Discount ("+v.CouponCode+")", "-"+v.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "%-18s %12s\n", "Delivery", v.DeliveryCharge.StringFixed(2))
	fmt.Fprintf(&b, "%-18s %12s\n", "Total", v.FinalAmount.StringFixed(2))
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "write totals")
	}
	return nil
}

func deliverTo(a *order.DeliveryAddress) string {
	if a == nil {
		return "Deliver to: address no longer available\n"
	}
	parts := []string{a.FullAddress}
	for _, p := range []string{a.Landmark, a.Locality, a.City, a.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return fmt.Sprintf("Deliver to: %s - %s\n", strings.Join(parts, ", "), a.Pincode)
}
