package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/user"
)

const (
	addressColumns = `id, user_id, full_address, locality, city, state, pincode, landmark, created_at`

	listAddressesSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	getAddressSQL = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	lockUserSQL = `SELECT id FROM users WHERE id = $1 FOR UPDATE`

	countAddressesSQL = `SELECT count(*) FROM addresses WHERE user_id = $1`

	createAddressSQL = `INSERT INTO addresses (user_id, full_address, locality, city, state, pincode, landmark)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	updateAddressSQL = `UPDATE addresses
		SET full_address = $2, locality = $3, city = $4, state = $5, pincode = $6, landmark = $7
		WHERE id = $1
		RETURNING user_id, created_at`

	deleteAddressSQL = `DELETE FROM addresses WHERE id = $1`

	pendingOrdersSQL = `SELECT EXISTS (
		SELECT 1 FROM orders WHERE address_id = $1 AND order_status = 'Pending'
	)`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// ListByUser returns the addresses of userID, newest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID int64) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses of user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// Get returns a single address.
func (r *AddressRepository) Get(ctx context.Context, id int64) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}
	return &a, nil
}

// Create inserts a while holding the owner's row lock, so concurrent creates
// cannot exceed limit.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address, limit int) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var owner int64
		if err := tx.QueryRow(ctx, lockUserSQL, a.UserID).Scan(&owner); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return user.ErrNotFound
			}
			return fmt.Errorf("locking user %d: %w", a.UserID, err)
		}

		var n int
		if err := tx.QueryRow(ctx, countAddressesSQL, a.UserID).Scan(&n); err != nil {
			return fmt.Errorf("counting addresses of user %d: %w", a.UserID, err)
		}
		if n >= limit {
			return address.ErrLimitReached
		}

		err := tx.QueryRow(ctx, createAddressSQL,
			a.UserID, a.FullAddress, a.Locality, a.City, a.State, a.Pincode, a.Landmark,
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating address: %w", err)
		}
		return nil
	})
}

// Update replaces the fields of an address.
func (r *AddressRepository) Update(ctx context.Context, a *address.Address) error {
	err := r.pool.QueryRow(ctx, updateAddressSQL,
		a.ID, a.FullAddress, a.Locality, a.City, a.State, a.Pincode, a.Landmark,
	).Scan(&a.UserID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return address.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating address %d: %w", a.ID, err)
	}
	return nil
}

// Delete removes an address. Orders shipped to it keep a NULL address.
func (r *AddressRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, id)
	if err != nil {
		return fmt.Errorf("deleting address %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// HasPendingOrders reports whether a Pending order ships to the address.
func (r *AddressRepository) HasPendingOrders(ctx context.Context, id int64) (bool, error) {
	var pending bool
	if err := r.pool.QueryRow(ctx, pendingOrdersSQL, id).Scan(&pending); err != nil {
		return false, fmt.Errorf("checking pending orders for address %d: %w", id, err)
	}
	return pending, nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullAddress, &a.Locality, &a.City, &a.State,
		&a.Pincode, &a.Landmark, &a.CreatedAt,
	)
	return a, err
}
