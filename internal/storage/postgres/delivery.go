package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/pricing"
)

const (
	getDeliverySettingSQL = `SELECT delivery_charge, free_delivery_limit
		FROM delivery_settings WHERE id = 1`

	upsertDeliverySettingSQL = `INSERT INTO delivery_settings (id, delivery_charge, free_delivery_limit)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET delivery_charge = EXCLUDED.delivery_charge, free_delivery_limit = EXCLUDED.free_delivery_limit`
)

var _ pricing.SettingsRepository = (*DeliveryRepository)(nil)

// DeliveryRepository stores the singleton delivery setting.
type DeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryRepository returns a DeliveryRepository that uses the given pool.
func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

// GetDeliverySetting reads the setting row.
func (r *DeliveryRepository) GetDeliverySetting(ctx context.Context) (*pricing.DeliverySetting, error) {
	var s pricing.DeliverySetting
	if err := r.pool.QueryRow(ctx, getDeliverySettingSQL).Scan(&s.DeliveryCharge, &s.FreeDeliveryLimit); err != nil {
		return nil, fmt.Errorf("getting delivery setting: %w", err)
	}
	return &s, nil
}

// UpdateDeliverySetting overwrites the setting row.
func (r *DeliveryRepository) UpdateDeliverySetting(ctx context.Context, s pricing.DeliverySetting) error {
	if _, err := r.pool.Exec(ctx, upsertDeliverySettingSQL, s.DeliveryCharge, s.FreeDeliveryLimit); err != nil {
		return fmt.Errorf("updating delivery setting: %w", err)
	}
	return nil
}
