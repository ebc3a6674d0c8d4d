package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/banner"
)

const (
	listBannersSQL = `SELECT id, title, image, image_mime, active, created_at
		FROM banners WHERE active OR NOT $1
		ORDER BY created_at DESC, id DESC`

	createBannerSQL = `INSERT INTO banners (title, image, image_mime, active)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	setBannerActiveSQL = `UPDATE banners SET active = $2 WHERE id = $1`

	deleteBannerSQL = `DELETE FROM banners WHERE id = $1`
)

var _ banner.Repository = (*BannerRepository)(nil)

// BannerRepository implements banner.Repository backed by PostgreSQL.
type BannerRepository struct {
	pool *pgxpool.Pool
}

// NewBannerRepository returns a BannerRepository that uses the given pool.
func NewBannerRepository(pool *pgxpool.Pool) *BannerRepository {
	return &BannerRepository{pool: pool}
}

// List returns banners newest first, optionally only active ones.
func (r *BannerRepository) List(ctx context.Context, activeOnly bool) ([]banner.Banner, error) {
	rows, err := r.pool.Query(ctx, listBannersSQL, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing banners: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (banner.Banner, error) {
		var b banner.Banner
		err := row.Scan(&b.ID, &b.Title, &b.Image.Data, &b.Image.MIME, &b.Active, &b.CreatedAt)
		return b, err
	})
}

// Create inserts b and fills its ID and CreatedAt.
func (r *BannerRepository) Create(ctx context.Context, b *banner.Banner) error {
	err := r.pool.QueryRow(ctx, createBannerSQL, b.Title, b.Image.Data, b.Image.MIME, b.Active).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating banner %q: %w", b.Title, err)
	}
	return nil
}

// SetActive shows or hides a banner.
func (r *BannerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, setBannerActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("updating banner %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return banner.ErrNotFound
	}
	return nil
}

// Delete removes a banner.
func (r *BannerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteBannerSQL, id)
	if err != nil {
		return fmt.Errorf("deleting banner %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return banner.ErrNotFound
	}
	return nil
}
