//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/auth"
	"github.com/xenking/grocer-kart/internal/domain/cart"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/domain/user"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "grocer",
				"POSTGRES_PASSWORD": "grocer",
				"POSTGRES_DB":       "grocer",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	host, err := ctr.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	url := fmt.Sprintf("postgres://grocer:grocer@%s:%s/grocer?sslmode=disable", host, port.Port())
	testPool, err = NewPool(ctx, url)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	return m.Run()
}

func resetDB(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE order_items, orders, cart_lines,
		product_images, variants, products, categories, addresses, users, offers, banners, api_keys
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedUser(t *testing.T, mobile string) *user.User {
	t.Helper()
	u := &user.User{Mobile: mobile, Name: "Asha", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), u))
	return u
}

func seedProduct(t *testing.T) *catalog.Product {
	t.Helper()
	ctx := context.Background()
	repo := NewCatalogRepository(testPool)

	c := &catalog.Category{Name: "Fruits"}
	require.NoError(t, repo.CreateCategory(ctx, c))

	p := &catalog.Product{
		Name:       "Banana",
		CategoryID: c.ID,
		Status:     catalog.StatusEnabled,
		Variants: []catalog.Variant{
			{QuantityValue: "6 pcs", Price: decimal.NewFromInt(40)},
			{QuantityValue: "12 pcs", Price: decimal.NewFromInt(75)},
		},
	}
	require.NoError(t, repo.CreateProduct(ctx, p))
	return p
}

func TestRunMigrationsTwice(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), testPool))
}

func TestUserRepository(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	u := seedUser(t, "9876543210")
	assert.NotZero(t, u.ID)

	got, err := repo.GetByMobile(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = repo.Create(ctx, &user.User{Mobile: "9876543210", Name: "Other", PasswordHash: "y"})
	assert.ErrorIs(t, err, user.ErrMobileTaken)

	_, err = repo.GetByMobile(ctx, "0000000000")
	assert.ErrorIs(t, err, user.ErrNotFound)

	id, err := repo.UpsertAdmin(ctx, "admin", "hash1")
	require.NoError(t, err)
	again, err := repo.UpsertAdmin(ctx, "admin", "hash2")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	admin, err := repo.GetAdmin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash2", admin.PasswordHash)
}

func TestAddressLimit(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewAddressRepository(testPool)
	u := seedUser(t, "9876543210")

	for i := range 2 {
		a := &address.Address{UserID: u.ID, FullAddress: fmt.Sprintf("%d MG Road", i+1), Pincode: "560001"}
		require.NoError(t, repo.Create(ctx, a, 2))
		assert.NotZero(t, a.ID)
	}

	err := repo.Create(ctx, &address.Address{UserID: u.ID, FullAddress: "3 MG Road", Pincode: "560001"}, 2)
	assert.ErrorIs(t, err, address.ErrLimitReached)

	err = repo.Create(ctx, &address.Address{UserID: 999, FullAddress: "x", Pincode: "560001"}, 2)
	assert.ErrorIs(t, err, user.ErrNotFound)

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCartUpsertReplacesQuantity(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewCartRepository(testPool)
	u := seedUser(t, "9876543210")
	p := seedProduct(t)

	line := cart.Line{UserID: u.ID, ProductID: p.ID, VariantID: p.Variants[0].ID, Quantity: 2}
	require.NoError(t, repo.Upsert(ctx, line))
	line.Quantity = 4
	require.NoError(t, repo.Upsert(ctx, line))

	items, err := repo.Items(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	require.NoError(t, repo.Clear(ctx, u.ID))
	items, err = repo.Items(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderCreate(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testPool, time.UTC)
	u := seedUser(t, "9876543210")
	p := seedProduct(t)

	newOrder := func(id string, at time.Time, variantID int64) *order.Order {
		return &order.Order{
			ID:          id,
			TotalAmount: decimal.NewFromInt(80),
			OrderDate:   at,
			Status:      order.StatusPending,
			UserID:      u.ID,
			FinalAmount: decimal.NewFromInt(80),
			Items: []order.Item{
				{ProductID: p.ID, VariantID: variantID, Quantity: 2, Price: decimal.NewFromInt(40)},
			},
		}
	}

	t.Run("stores header and items", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newOrder("ORD-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), p.Variants[0].ID)))
		items, err := repo.Items(ctx, []string{"ORD-1"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Banana", items[0].ProductName)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.Create(ctx, newOrder("ORD-1", time.Now(), p.Variants[0].ID))
		assert.ErrorIs(t, err, order.ErrDuplicateOrder)
	})

	t.Run("bad item rolls back header", func(t *testing.T) {
		err := repo.Create(ctx, newOrder("ORD-BAD", time.Now(), 999_999))
		assert.ErrorIs(t, err, catalog.ErrVariantNotFound)
		_, err = repo.Header(ctx, "ORD-BAD")
		assert.ErrorIs(t, err, order.ErrNotFound)
	})

	t.Run("missing address", func(t *testing.T) {
		o := newOrder("ORD-NOADDR", time.Now(), p.Variants[0].ID)
		missing := int64(999_999)
		o.AddressID = &missing
		assert.ErrorIs(t, repo.Create(ctx, o), address.ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		o := newOrder("ORD-NOUSER", time.Now(), p.Variants[0].ID)
		o.UserID = 999_999
		assert.ErrorIs(t, repo.Create(ctx, o), user.ErrNotFound)
	})

	t.Run("newest first", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newOrder("ORD-2", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), p.Variants[1].ID)))
		views, err := repo.Headers(ctx, order.Filter{Mobile: "9876543210"})
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "ORD-2", views[0].ID)
		assert.Equal(t, "Asha", views[0].CustomerName)

		again, err := repo.Headers(ctx, order.Filter{Mobile: "9876543210"})
		require.NoError(t, err)
		assert.Equal(t, views, again)
	})

	t.Run("earnings count delivered only", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, "ORD-1", order.StatusDelivered))
		days, err := repo.Earnings(ctx,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, 1, days[0].Orders)
		assert.True(t, days[0].Revenue.Equal(decimal.NewFromInt(80)))
	})

	t.Run("status of missing order", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateStatus(ctx, "NOPE", order.StatusCancelled), order.ErrNotFound)
	})
}

func TestOfferUpsertBatch(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOfferRepository(testPool)

	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
	offer := func(code string, pct int64) coupon.Offer {
		return coupon.Offer{
			Code:            code,
			StartDate:       day(1),
			EndDate:         day(31),
			MinCartValue:    decimal.Zero,
			MaxCartValue:    decimal.NewFromInt(1000),
			DiscountPercent: decimal.NewFromInt(pct),
		}
	}

	n, err := repo.UpsertBatch(ctx, []coupon.Offer{offer("FRESH", 10), offer("DAIRY", 5)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.UpsertBatch(ctx, []coupon.Offer{offer("FRESH", 20), offer("MEGA", 50)})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	got, err := repo.FindByCode(ctx, "FRESH")
	require.NoError(t, err)
	assert.True(t, got.DiscountPercent.Equal(decimal.NewFromInt(20)))

	_, err = repo.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, coupon.ErrInvalidCoupon)
}

func TestAPIKeyRepository(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewAPIKeyRepository(testPool)

	hash := auth.HashKey([]byte("pepper"), "secret")
	require.NoError(t, repo.Upsert(ctx, auth.APIKeyInfo{ID: "admin", KeyHash: hash, Name: "Admin", Scopes: []string{auth.ScopeAdmin}}))

	got, err := repo.FindByHash(ctx, hash)
	require.NoError(t, err)
	assert.True(t, got.HasScope(auth.ScopeAdmin))

	_, err = repo.FindByHash(ctx, "missing")
	assert.ErrorIs(t, err, auth.ErrKeyNotFound)
}
