package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/cart"
)

const (
	upsertCartLineSQL = `INSERT INTO cart_lines (user_id, product_id, variant_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id, variant_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	removeCartLineSQL = `DELETE FROM cart_lines
		WHERE user_id = $1 AND product_id = $2 AND variant_id = $3`

	clearCartSQL = `DELETE FROM cart_lines WHERE user_id = $1`

	cartItemsSQL = `SELECT cl.product_id, cl.variant_id, p.name, v.quantity_value, v.price, v.mrp,
			cl.quantity, i.data, COALESCE(i.mime, '')
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		JOIN variants v ON v.id = cl.variant_id
		LEFT JOIN product_images i ON i.product_id = cl.product_id
		WHERE cl.user_id = $1
		ORDER BY p.name, v.id`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Upsert stores l, overwriting the quantity of an existing line.
func (r *CartRepository) Upsert(ctx context.Context, l cart.Line) error {
	_, err := r.pool.Exec(ctx, upsertCartLineSQL, l.UserID, l.ProductID, l.VariantID, l.Quantity)
	if err != nil {
		return fmt.Errorf("upserting cart line of user %d: %w", l.UserID, err)
	}
	return nil
}

// Remove deletes one line.
func (r *CartRepository) Remove(ctx context.Context, userID, productID, variantID int64) error {
	tag, err := r.pool.Exec(ctx, removeCartLineSQL, userID, productID, variantID)
	if err != nil {
		return fmt.Errorf("removing cart line of user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Clear deletes every line of userID.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart of user %d: %w", userID, err)
	}
	return nil
}

// Items returns the cart of userID joined to products and variants.
func (r *CartRepository) Items(ctx context.Context, userID int64) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, cartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart of user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var (
			it   cart.Item
			data []byte
			mime string
		)
		err := row.Scan(
			&it.ProductID, &it.VariantID, &it.ProductName, &it.QuantityValue,
			&it.Price, &it.MRP, &it.Quantity, &data, &mime,
		)
		it.Image = imageOf(data, mime)
		return it, err
	})
}
