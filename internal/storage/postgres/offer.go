package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/coupon"
)

const (
	offerColumns = `id, code, description, start_date, end_date, min_cart_value, max_cart_value,
		discount_percent, max_discount`

	getOfferByCodeSQL = `SELECT ` + offerColumns + ` FROM offers WHERE code = $1`

	listOffersSQL = `SELECT ` + offerColumns + ` FROM offers ORDER BY end_date DESC, code`

	createOfferSQL = `INSERT INTO offers (code, description, start_date, end_date, min_cart_value,
			max_cart_value, discount_percent, max_discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	updateOfferSQL = `UPDATE offers SET code = $2, description = $3, start_date = $4, end_date = $5,
			min_cart_value = $6, max_cart_value = $7, discount_percent = $8, max_discount = $9
		WHERE id = $1`

	deleteOfferSQL = `DELETE FROM offers WHERE id = $1`

	createOfferStageSQL = `CREATE TEMP TABLE offers_stage
		(LIKE offers INCLUDING DEFAULTS) ON COMMIT DROP`

	mergeOfferStageSQL = `INSERT INTO offers (code, description, start_date, end_date, min_cart_value,
			max_cart_value, discount_percent, max_discount)
		SELECT code, description, start_date, end_date, min_cart_value,
			max_cart_value, discount_percent, max_discount
		FROM offers_stage
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			min_cart_value = EXCLUDED.min_cart_value,
			max_cart_value = EXCLUDED.max_cart_value,
			discount_percent = EXCLUDED.discount_percent,
			max_discount = EXCLUDED.max_discount`
)

var offerStageColumns = []string{
	"code", "description", "start_date", "end_date", "min_cart_value",
	"max_cart_value", "discount_percent", "max_discount",
}

var _ coupon.Repository = (*OfferRepository)(nil)

// OfferRepository implements coupon.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// FindByCode looks up an offer by its exact uppercase code.
// Returns coupon.ErrInvalidCoupon when no offer matches.
func (r *OfferRepository) FindByCode(ctx context.Context, code string) (*coupon.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}
	return &o, nil
}

// List returns every offer, latest ending first.
func (r *OfferRepository) List(ctx context.Context) ([]coupon.Offer, error) {
	rows, err := r.pool.Query(ctx, listOffersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// Create inserts o and fills its ID.
func (r *OfferRepository) Create(ctx context.Context, o *coupon.Offer) error {
	err := r.pool.QueryRow(ctx, createOfferSQL,
		o.Code, o.Description, o.StartDate, o.EndDate, o.MinCartValue,
		o.MaxCartValue, o.DiscountPercent, o.MaxDiscount,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrDuplicateCode
		}
		return fmt.Errorf("creating offer %q: %w", o.Code, err)
	}
	return nil
}

// Update replaces every field of the offer with o's id.
func (r *OfferRepository) Update(ctx context.Context, o *coupon.Offer) error {
	tag, err := r.pool.Exec(ctx, updateOfferSQL,
		o.ID, o.Code, o.Description, o.StartDate, o.EndDate, o.MinCartValue,
		o.MaxCartValue, o.DiscountPercent, o.MaxDiscount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrDuplicateCode
		}
		return fmt.Errorf("updating offer %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrOfferNotFound
	}
	return nil
}

// Delete removes an offer. Orders keep the code they were placed with.
func (r *OfferRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOfferSQL, id)
	if err != nil {
		return fmt.Errorf("deleting offer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrOfferNotFound
	}
	return nil
}

// UpsertBatch copies offers into a staging table and merges them into
// offers by code in one transaction. Codes must be unique within offers.
func (r *OfferRepository) UpsertBatch(ctx context.Context, offers []coupon.Offer) (int64, error) {
	var merged int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createOfferStageSQL); err != nil {
			return fmt.Errorf("creating offer stage: %w", err)
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"offers_stage"}, offerStageColumns,
			pgx.CopyFromSlice(len(offers), func(i int) ([]any, error) {
				o := &offers[i]
				return []any{
					o.Code, o.Description, o.StartDate, o.EndDate, o.MinCartValue,
					o.MaxCartValue, o.DiscountPercent, o.MaxDiscount,
				}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying offers: %w", err)
		}
		tag, err := tx.Exec(ctx, mergeOfferStageSQL)
		if err != nil {
			return fmt.Errorf("merging offers: %w", err)
		}
		merged = tag.RowsAffected()
		return nil
	})
	return merged, err
}

func scanOffer(row pgx.CollectableRow) (coupon.Offer, error) {
	var o coupon.Offer
	err := row.Scan(
		&o.ID, &o.Code, &o.Description, &o.StartDate, &o.EndDate,
		&o.MinCartValue, &o.MaxCartValue, &o.DiscountPercent, &o.MaxDiscount,
	)
	return o, err
}
