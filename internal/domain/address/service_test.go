package address

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/grocer-kart/internal/domain/validation"
)

type mockAddressRepo struct {
	addrs   map[int64]*Address
	pending map[int64]bool
	err     error

	lastLimit int
	deleted   int64
}

func newRepo(addrs ...Address) *mockAddressRepo {
	m := &mockAddressRepo{addrs: make(map[int64]*Address), pending: make(map[int64]bool)}
	for i := range addrs {
		m.addrs[addrs[i].ID] = &addrs[i]
	}
	return m
}

func (m *mockAddressRepo) ListByUser(_ context.Context, userID int64) ([]Address, error) {
	var out []Address
	for _, a := range m.addrs {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, m.err
}

func (m *mockAddressRepo) Get(_ context.Context, id int64) (*Address, error) {
	a, ok := m.addrs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockAddressRepo) Create(_ context.Context, a *Address, limit int) error {
	m.lastLimit = limit
	if m.err != nil {
		return m.err
	}
	n := 0
	for _, existing := range m.addrs {
		if existing.UserID == a.UserID {
			n++
		}
	}
	if n >= limit {
		return ErrLimitReached
	}
	a.ID = int64(len(m.addrs) + 1)
	m.addrs[a.ID] = a
	return nil
}

func (m *mockAddressRepo) Update(_ context.Context, a *Address) error {
	m.addrs[a.ID] = a
	return m.err
}

func (m *mockAddressRepo) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

func (m *mockAddressRepo) HasPendingOrders(_ context.Context, id int64) (bool, error) {
	return m.pending[id], nil
}

func validAddress(userID int64) *Address {
	return &Address{
		UserID:      userID,
		FullAddress: " 12 MG Road ",
		City:        "Bengaluru",
		State:       "KA",
		Pincode:     "560001",
	}
}

func TestCreate(t *testing.T) {
	t.Run("trims and stores", func(t *testing.T) {
		repo := newRepo()
		svc := NewService(repo, 0)

		a := validAddress(1)
		require.NoError(t, svc.Create(context.Background(), a))
		assert.Equal(t, "12 MG Road", a.FullAddress)
		assert.Equal(t, DefaultLimit, repo.lastLimit)
	})

	t.Run("sixth address rejected", func(t *testing.T) {
		repo := newRepo()
		svc := NewService(repo, 5)
		ctx := context.Background()

		for range 5 {
			require.NoError(t, svc.Create(ctx, validAddress(1)))
		}
		err := svc.Create(ctx, validAddress(1))
		require.ErrorIs(t, err, ErrLimitReached)

		require.NoError(t, svc.Create(ctx, validAddress(2)), "limit is per user")
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewService(newRepo(), 5)

		a := validAddress(1)
		a.FullAddress = "  "
		var vErr *validation.Error
		require.ErrorAs(t, svc.Create(context.Background(), a), &vErr)
		assert.Equal(t, "full_address", vErr.Field)

		a = validAddress(1)
		a.Pincode = "12"
		require.ErrorAs(t, svc.Create(context.Background(), a), &vErr)
		assert.Equal(t, "pincode", vErr.Field)

		a = validAddress(0)
		require.ErrorAs(t, svc.Create(context.Background(), a), &vErr)
		assert.Equal(t, "user_id", vErr.Field)
	})
}

func TestUpdateAndDelete_PendingOrderGate(t *testing.T) {
	repo := newRepo(Address{ID: 1, UserID: 1, FullAddress: "a", Pincode: "560001"})
	repo.pending[1] = true
	svc := NewService(repo, 5)
	ctx := context.Background()

	upd := validAddress(1)
	upd.ID = 1
	require.ErrorIs(t, svc.Update(ctx, upd), ErrInUse)
	require.ErrorIs(t, svc.Delete(ctx, 1), ErrInUse)
	assert.Zero(t, repo.deleted)

	repo.pending[1] = false
	require.NoError(t, svc.Update(ctx, upd))
	require.NoError(t, svc.Delete(ctx, 1))
	assert.Equal(t, int64(1), repo.deleted)
}

func TestHasPendingOrders_UnknownAddress(t *testing.T) {
	svc := NewService(newRepo(), 5)

	_, err := svc.HasPendingOrders(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestList_Error(t *testing.T) {
	repo := newRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo, 5)

	_, err := svc.List(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list addresses")
}
