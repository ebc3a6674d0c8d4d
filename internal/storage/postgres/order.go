package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/domain/user"
)

const (
	createOrderSQL = `INSERT INTO orders (order_id, total_amount, order_date, order_status, user_id,
			address_id, coupon_code, discount, final_amount, delivery_charge)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	orderHeaderColumns = `o.order_id, o.total_amount, o.order_date, o.order_status, o.user_id,
		u.name, u.mobile, o.coupon_code, o.discount, o.delivery_charge, o.final_amount,
		a.id, a.full_address, a.locality, a.city, a.state, a.pincode, a.landmark`

	orderHeaderFromSQL = ` FROM orders o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN addresses a ON a.id = o.address_id`

	listOrderHeadersSQL = `SELECT ` + orderHeaderColumns + orderHeaderFromSQL + `
		WHERE ($1::bigint = 0 OR o.user_id = $1)
		  AND ($2::text = '' OR u.mobile = $2)
		ORDER BY o.order_date DESC, o.order_id DESC`

	getOrderHeaderSQL = `SELECT ` + orderHeaderColumns + orderHeaderFromSQL + ` WHERE o.order_id = $1`

	listOrderItemsSQL = `SELECT oi.order_id, oi.product_id, oi.variant_id,
			COALESCE(p.name, ''), COALESCE(v.quantity_value, ''), oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN variants v ON v.id = oi.variant_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`

	updateOrderStatusSQL = `UPDATE orders SET order_status = $2 WHERE order_id = $1`

	earningsSQL = `SELECT (o.order_date AT TIME ZONE $3)::date AS day,
			SUM(o.final_amount), COUNT(*)
		FROM orders o
		WHERE o.order_status = 'Delivered'
		  AND (o.order_date AT TIME ZONE $3)::date BETWEEN $1::date AND $2::date
		GROUP BY day
		ORDER BY day`
)

var orderItemColumns = []string{"order_id", "product_id", "variant_id", "quantity", "price"}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
// Earnings are bucketed by calendar day in loc.
func NewOrderRepository(pool *pgxpool.Pool, loc *time.Location) *OrderRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderRepository{pool: pool, loc: loc}
}

// Create inserts the order row and copies its items inside one transaction.
// A failed item aborts the whole order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, createOrderSQL,
			o.ID, o.TotalAmount, o.OrderDate, string(o.Status), o.UserID,
			o.AddressID, o.CouponCode, o.Discount, o.FinalAmount, o.DeliveryCharge,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return order.ErrDuplicateOrder
			case isForeignKeyViolation(err) && violatedConstraint(err) == "orders_address_id_fkey":
				return address.ErrNotFound
			case isForeignKeyViolation(err):
				return user.ErrNotFound
			}
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}

		rows := make([][]any, len(o.Items))
		for i, it := range o.Items {
			rows[i] = []any{o.ID, it.ProductID, it.VariantID, it.Quantity, it.Price}
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"order_items"}, orderItemColumns, pgx.CopyFromRows(rows))
		if err != nil {
			if isForeignKeyViolation(err) {
				return catalog.ErrVariantNotFound
			}
			return fmt.Errorf("copying items of order %q: %w", o.ID, err)
		}
		if int(n) != len(o.Items) {
			return fmt.Errorf("copying items of order %q: wrote %d of %d", o.ID, n, len(o.Items))
		}
		return nil
	})
}

// Headers returns matching orders, newest first with ties broken by order
// id descending.
func (r *OrderRepository) Headers(ctx context.Context, f order.Filter) ([]order.View, error) {
	rows, err := r.pool.Query(ctx, listOrderHeadersSQL, f.UserID, f.Mobile)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrderHeader)
}

// Header returns a single order without items.
func (r *OrderRepository) Header(ctx context.Context, id string) (*order.View, error) {
	rows, err := r.pool.Query(ctx, getOrderHeaderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scanOrderHeader)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &v, nil
}

// Items returns the lines of the given orders in insertion order.
func (r *OrderRepository) Items(ctx context.Context, ids []string) ([]order.ItemView, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.ItemView, error) {
		var it order.ItemView
		err := row.Scan(
			&it.OrderID, &it.ProductID, &it.VariantID, &it.ProductName,
			&it.QuantityValue, &it.Quantity, &it.Price,
		)
		return it, err
	})
}

// UpdateStatus overwrites the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, s order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(s))
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Earnings sums delivered orders per calendar day in [from, to].
func (r *OrderRepository) Earnings(ctx context.Context, from, to time.Time) ([]order.DailyEarning, error) {
	rows, err := r.pool.Query(ctx, earningsSQL,
		from.Format(time.DateOnly), to.Format(time.DateOnly), r.loc.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating earnings: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.DailyEarning, error) {
		var e order.DailyEarning
		err := row.Scan(&e.Day, &e.Revenue, &e.Orders)
		return e, err
	})
}

func scanOrderHeader(row pgx.CollectableRow) (order.View, error) {
	var (
		v       order.View
		status  string
		addrID  *int64
		full    *string
		local   *string
		city    *string
		state   *string
		pincode *string
		mark    *string
	)
	err := row.Scan(
		&v.ID, &v.TotalAmount, &v.OrderDate, &status, &v.UserID,
		&v.CustomerName, &v.Mobile, &v.CouponCode, &v.Discount, &v.DeliveryCharge, &v.FinalAmount,
		&addrID, &full, &local, &city, &state, &pincode, &mark,
	)
	v.Status = order.Status(status)
	if addrID != nil {
		v.DeliveryAddress = &order.DeliveryAddress{
			ID:          *addrID,
			FullAddress: deref(full),
			Locality:    deref(local),
			City:        deref(city),
			State:       deref(state),
			Pincode:     deref(pincode),
			Landmark:    deref(mark),
		}
	}
	return v, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
