package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ErrInvalidSetting is returned when a delivery setting has negative values.
var ErrInvalidSetting = errors.New("delivery charge and free delivery limit must not be negative")

// Quoter prices carts using the stored delivery setting.
type Quoter struct {
	repo SettingsRepository
}

// NewQuoter creates a Quoter backed by repo.
func NewQuoter(repo SettingsRepository) *Quoter {
	return &Quoter{repo: repo}
}

// Settings returns the current delivery setting. A failed read is logged and
// answered with the zero setting, so delivery falls back to free.
func (q *Quoter) Settings(ctx context.Context) DeliverySetting {
	s, err := q.repo.GetDeliverySetting(ctx)
	if err != nil || s == nil {
		zctx.From(ctx).Warn("Delivery setting unavailable, using free delivery", zap.Error(err))
		return DeliverySetting{}
	}
	return *s
}

// Quote prices lines against the current delivery setting.
func (q *Quoter) Quote(ctx context.Context, lines []Line) Breakdown {
	return Calculate(lines, q.Settings(ctx))
}

// Update replaces the delivery setting.
func (q *Quoter) Update(ctx context.Context, s DeliverySetting) error {
	if s.DeliveryCharge.IsNegative() || s.FreeDeliveryLimit.IsNegative() {
		return ErrInvalidSetting
	}
	if err := q.repo.UpdateDeliverySetting(ctx, s); err != nil {
		return errors.Wrap(err, "update delivery setting")
	}
	return nil
}

// Current returns the stored delivery setting without the free-delivery
// fallback, for the admin console.
func (q *Quoter) Current(ctx context.Context) (*DeliverySetting, error) {
	s, err := q.repo.GetDeliverySetting(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get delivery setting")
	}
	return s, nil
}
