package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOfferRepo struct {
	offer *Offer
	err   error

	created *Offer
	updated *Offer
	deleted int64
}

func (m *mockOfferRepo) FindByCode(_ context.Context, _ string) (*Offer, error) {
	return m.offer, m.err
}

func (m *mockOfferRepo) List(_ context.Context) ([]Offer, error) {
	if m.offer == nil {
		return nil, m.err
	}
	return []Offer{*m.offer}, m.err
}

func (m *mockOfferRepo) Create(_ context.Context, o *Offer) error {
	m.created = o
	o.ID = 42
	return m.err
}

func (m *mockOfferRepo) Update(_ context.Context, o *Offer) error {
	m.updated = o
	return m.err
}

func (m *mockOfferRepo) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func newOffer(code string) *Offer {
	return &Offer{
		ID:              1,
		Code:            code,
		StartDate:       date(2025, 6, 1),
		EndDate:         date(2025, 6, 30),
		MinCartValue:    d("100"),
		MaxCartValue:    d("1000"),
		DiscountPercent: d("10"),
	}
}

func withCap(o *Offer, c string) *Offer {
	o.MaxDiscount = decimal.NewNullDecimal(d(c))
	return o
}

func TestRepoValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		repo         *mockOfferRepo
		code         string
		cartValue    decimal.Decimal
		wantValid    bool
		wantDiscount decimal.Decimal
		wantFinal    decimal.Decimal
		wantMessage  string
	}{
		{
			name:         "capped percentage discount",
			repo:         &mockOfferRepo{offer: withCap(newOffer("SAVE"), "30")},
			code:         "SAVE",
			cartValue:    d("500"),
			wantValid:    true,
			wantDiscount: d("30"),
			wantFinal:    d("470"),
			wantMessage:  msgApplied,
		},
		{
			name:         "uncapped percentage discount",
			repo:         &mockOfferRepo{offer: newOffer("SAVE")},
			code:         "SAVE",
			cartValue:    d("500"),
			wantValid:    true,
			wantDiscount: d("50"),
			wantFinal:    d("450"),
		},
		{
			name:         "cap above computed discount is not applied",
			repo:         &mockOfferRepo{offer: withCap(newOffer("SAVE"), "80")},
			code:         "SAVE",
			cartValue:    d("500"),
			wantValid:    true,
			wantDiscount: d("50"),
			wantFinal:    d("450"),
		},
		{
			name:         "below minimum cart value",
			repo:         &mockOfferRepo{offer: newOffer("SAVE")},
			code:         "SAVE",
			cartValue:    d("50"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("50"),
			wantMessage:  "Add items worth 100.00 or more to use this coupon",
		},
		{
			name:         "above maximum cart value",
			repo:         &mockOfferRepo{offer: newOffer("SAVE")},
			code:         "SAVE",
			cartValue:    d("1000.01"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("1000.01"),
			wantMessage:  "This coupon is valid only for cart values up to 1000.00",
		},
		{
			name:         "bounds are inclusive",
			repo:         &mockOfferRepo{offer: newOffer("SAVE")},
			code:         "SAVE",
			cartValue:    d("100"),
			wantValid:    true,
			wantDiscount: d("10"),
			wantFinal:    d("90"),
		},
		{
			name: "expired offer",
			repo: &mockOfferRepo{offer: func() *Offer {
				o := newOffer("OLD")
				o.EndDate = date(2025, 6, 14)
				return o
			}()},
			code:         "OLD",
			cartValue:    d("500"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("500"),
			wantMessage:  msgExpired,
		},
		{
			name: "offer not started",
			repo: &mockOfferRepo{offer: func() *Offer {
				o := newOffer("SOON")
				o.StartDate = date(2025, 6, 16)
				return o
			}()},
			code:         "SOON",
			cartValue:    d("500"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("500"),
			wantMessage:  msgNotStarted,
		},
		{
			name: "window is inclusive on the end date",
			repo: &mockOfferRepo{offer: func() *Offer {
				o := newOffer("LAST")
				o.EndDate = date(2025, 6, 15)
				return o
			}()},
			code:         "LAST",
			cartValue:    d("200"),
			wantValid:    true,
			wantDiscount: d("20"),
			wantFinal:    d("180"),
		},
		{
			name:         "unknown code",
			repo:         &mockOfferRepo{err: ErrInvalidCoupon},
			code:         "BOGUS",
			cartValue:    d("500"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("500"),
			wantMessage:  msgInvalidCode,
		},
		{
			name:         "lowercase code rejected before lookup",
			repo:         &mockOfferRepo{err: errors.New("must not be called")},
			code:         "save",
			cartValue:    d("500"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("500"),
			wantMessage:  msgBadCharset,
		},
		{
			name:         "digits rejected",
			repo:         &mockOfferRepo{offer: newOffer("SAVE10")},
			code:         "SAVE10",
			cartValue:    d("500"),
			wantValid:    false,
			wantDiscount: d("0"),
			wantFinal:    d("500"),
			wantMessage:  msgBadCharset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(tt.repo, time.UTC)
			v.now = func() time.Time { return fixedNow }

			got, err := v.Validate(context.Background(), tt.code, tt.cartValue)
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, tt.wantValid, got.Valid)
			assert.True(t, tt.wantDiscount.Equal(got.Discount), "discount: want %s, got %s", tt.wantDiscount, got.Discount)
			assert.True(t, tt.wantFinal.Equal(got.FinalValue), "final: want %s, got %s", tt.wantFinal, got.FinalValue)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got.Message)
			}
		})
	}
}

func TestRepoValidator_LookupError(t *testing.T) {
	v := NewRepoValidator(&mockOfferRepo{err: errors.New("db down")}, time.UTC)

	got, err := v.Validate(context.Background(), "SAVE", d("500"))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "lookup offer")
}

func TestRepoValidator_UsesLocationForToday(t *testing.T) {
	// 2025-06-30 20:00 UTC is already 2025-07-01 in Kolkata.
	loc := time.FixedZone("IST", 5*3600+1800)
	v := NewRepoValidator(&mockOfferRepo{offer: newOffer("JUNE")}, loc)
	v.now = func() time.Time { return time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC) }

	got, err := v.Validate(context.Background(), "JUNE", d("500"))
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, msgExpired, got.Message)
}

func TestDiscount_Rounding(t *testing.T) {
	o := newOffer("ODD")
	o.DiscountPercent = d("12.5")

	// 333.33 * 12.5 / 100 = 41.66625
	assert.True(t, d("41.67").Equal(Discount(o, d("333.33"))))
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("WELCOME"))
	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("Welcome"))
	assert.False(t, ValidCode("NEW-USER"))
	assert.False(t, ValidCode("FLAT50"))
}
