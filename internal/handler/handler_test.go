package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/auth"
	"github.com/xenking/grocer-kart/internal/domain/cart"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/domain/user"
)

const (
	testAdminKey = "admin-secret"
	testPepper   = "pepper"
)

// --- In-memory repositories ---

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*user.User{}}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Mobile]; ok {
		return user.ErrMobileTaken
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cp := *u
	m.users[u.Mobile] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByMobile(_ context.Context, mobile string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[mobile]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Mobile]; !ok {
		return user.ErrNotFound
	}
	cp := *u
	m.users[u.Mobile] = &cp
	return nil
}

func (m *memUsers) DeleteByMobile(_ context.Context, mobile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[mobile]; !ok {
		return user.ErrNotFound
	}
	delete(m.users, mobile)
	return nil
}

func (m *memUsers) GetAdmin(_ context.Context, _ string) (*user.Admin, error) {
	return nil, user.ErrNotFound
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; ok {
		return order.ErrDuplicateOrder
	}
	for _, it := range o.Items {
		if it.VariantID != 10 {
			return catalog.ErrVariantNotFound
		}
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func headerOf(o *order.Order) order.View {
	return order.View{
		ID:             o.ID,
		TotalAmount:    o.TotalAmount,
		OrderDate:      o.OrderDate,
		Status:         o.Status,
		UserID:         o.UserID,
		CustomerName:   "Asha",
		Mobile:         "9876543210",
		CouponCode:     o.CouponCode,
		Discount:       o.Discount,
		DeliveryCharge: o.DeliveryCharge,
		FinalAmount:    o.FinalAmount,
	}
}

func (m *memOrders) Headers(_ context.Context, f order.Filter) ([]order.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.View
	for _, o := range m.orders {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.Mobile != "" && f.Mobile != "9876543210" {
			continue
		}
		out = append(out, headerOf(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memOrders) Header(_ context.Context, id string) (*order.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	v := headerOf(o)
	return &v, nil
}

func (m *memOrders) Items(_ context.Context, ids []string) ([]order.ItemView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.ItemView
	for _, id := range ids {
		o, ok := m.orders[id]
		if !ok {
			continue
		}
		for _, it := range o.Items {
			out = append(out, order.ItemView{
				OrderID:       id,
				ProductID:     it.ProductID,
				VariantID:     it.VariantID,
				ProductName:   "Basmati Rice",
				QuantityValue: "1 kg",
				Quantity:      it.Quantity,
				Price:         it.Price,
			})
		}
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, s order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = s
	return nil
}

func (m *memOrders) Earnings(_ context.Context, from, _ time.Time) ([]order.DailyEarning, error) {
	return []order.DailyEarning{
		{Day: from, Revenue: decimal.RequireFromString("120.50"), Orders: 2},
		{Day: from.AddDate(0, 0, 1), Revenue: decimal.RequireFromString("79.50"), Orders: 1},
	}, nil
}

type memOffers struct {
	coupon.Repository
	offers map[string]*coupon.Offer
}

func (m *memOffers) FindByCode(_ context.Context, code string) (*coupon.Offer, error) {
	o, ok := m.offers[code]
	if !ok {
		return nil, coupon.ErrInvalidCoupon
	}
	return o, nil
}

type memSettings struct {
	s pricing.DeliverySetting
}

func (m *memSettings) GetDeliverySetting(context.Context) (*pricing.DeliverySetting, error) {
	s := m.s
	return &s, nil
}

func (m *memSettings) UpdateDeliverySetting(_ context.Context, s pricing.DeliverySetting) error {
	m.s = s
	return nil
}

type memKeys struct {
	keys map[string]*auth.APIKeyInfo
}

func (m *memKeys) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	k, ok := m.keys[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return k, nil
}

func (m *memKeys) Upsert(_ context.Context, k auth.APIKeyInfo) error {
	m.keys[k.KeyHash] = &k
	return nil
}

type memCart struct {
	mu    sync.Mutex
	lines map[[3]int64]int
}

func (m *memCart) Upsert(_ context.Context, l cart.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[[3]int64{l.UserID, l.ProductID, l.VariantID}] = l.Quantity
	return nil
}

func (m *memCart) Remove(_ context.Context, userID, productID, variantID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [3]int64{userID, productID, variantID}
	if _, ok := m.lines[key]; !ok {
		return cart.ErrLineNotFound
	}
	delete(m.lines, key)
	return nil
}

func (m *memCart) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.lines {
		if k[0] == userID {
			delete(m.lines, k)
		}
	}
	return nil
}

func (m *memCart) Items(_ context.Context, userID int64) ([]cart.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []cart.Item
	for k, qty := range m.lines {
		if k[0] != userID {
			continue
		}
		out = append(out, cart.Item{
			ProductID:     k[1],
			VariantID:     k[2],
			ProductName:   "Basmati Rice",
			QuantityValue: "1 kg",
			Price:         decimal.NewFromInt(50),
			Quantity:      qty,
		})
	}
	return out, nil
}

type memVariants struct{}

func (memVariants) GetVariant(_ context.Context, productID, variantID int64) (*catalog.Variant, error) {
	if productID != 1 || variantID != 10 {
		return nil, catalog.ErrVariantNotFound
	}
	return &catalog.Variant{ID: 10, ProductID: 1, QuantityValue: "1 kg", Price: decimal.NewFromInt(50)}, nil
}

type memAddresses map[int64]*address.Address

func (m memAddresses) Get(_ context.Context, id int64) (*address.Address, error) {
	a, ok := m[id]
	if !ok {
		return nil, address.ErrNotFound
	}
	return a, nil
}

// --- Test server ---

type testServer struct {
	*httptest.Server
	users  *memUsers
	orders *memOrders
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newMemUsers()
	users.users["9876543210"] = &user.User{ID: 77, Mobile: "9876543210", Name: "Asha"}
	users.nextID = 77

	orders := &memOrders{orders: map[string]*order.Order{}}
	offers := &memOffers{offers: map[string]*coupon.Offer{
		"SAVETEN": {
			ID:              1,
			Code:            "SAVETEN",
			StartDate:       time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
			MinCartValue:    decimal.NewFromInt(50),
			MaxCartValue:    decimal.NewFromInt(10000),
			DiscountPercent: decimal.NewFromInt(10),
		},
	}}
	settings := &memSettings{s: pricing.DeliverySetting{
		DeliveryCharge:    decimal.NewFromInt(30),
		FreeDeliveryLimit: decimal.NewFromInt(500),
	}}
	keys := &memKeys{keys: map[string]*auth.APIKeyInfo{}}
	hash := auth.HashKey([]byte(testPepper), testAdminKey)
	require.NoError(t, keys.Upsert(context.Background(), auth.APIKeyInfo{
		ID: "admin", KeyHash: hash, Name: "admin console", Scopes: []string{auth.ScopeAdmin},
	}))

	userSvc := user.NewService(users, 4)
	quoter := pricing.NewQuoter(settings)
	validator := coupon.NewRepoValidator(offers, time.UTC)
	addresses := memAddresses{
		3: {ID: 3, UserID: 77, FullAddress: "12 MG Road", Pincode: "560001"},
		4: {ID: 4, UserID: 12, FullAddress: "8 Brigade Road", Pincode: "560001"},
	}
	orderSvc, err := order.NewService(orders, userSvc, addresses, validator, quoter, cart.MaxQuantity,
		noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	h := New(Config{
		Reference: Reference{
			ContactPhone: "1800-000-000",
			ContactEmail: "help@grocer.example",
			ContactHours: "9am-9pm",
			Pincodes:     []string{"560001", "560002"},
		},
		Location: time.UTC,
	}, Services{
		Users:    userSvc,
		Cart:     cart.NewService(&memCart{lines: map[[3]int64]int{}}, memVariants{}, quoter, cart.MaxQuantity),
		Orders:   orderSvc,
		Offers:   coupon.NewService(offers),
		Coupons:  validator,
		Delivery: quoter,
		Auth:     auth.NewAuthenticator(keys, []byte(testPepper)),
	})
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, users: users, orders: orders}
}

func (s *testServer) do(t *testing.T, method, path, body string, admin bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set(apiKeyHeader, testAdminKey)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const orderBody = `{
	"orderId": "ORD-1",
	"totalAmount": 100,
	"orderDate": "2026-01-02T10:00:00Z",
	"orderStatus": "Pending",
	"mobile": "+91 98765-43210",
	"couponCode": %q,
	"items": [{"productId": 1, "variantId": 10, "quantity": 2, "price": 50}]
}`

func placeOrderBody(id, coupon string) string {
	body := strings.Replace(orderBody, "ORD-1", id, 1)
	return strings.Replace(body, "%q", `"`+coupon+`"`, 1)
}

func withAddress(body string, id int64) string {
	return strings.Replace(body, `"orderStatus"`, `"address_id": `+strconv.FormatInt(id, 10)+`, "orderStatus"`, 1)
}

// --- Tests ---

func TestPlaceOrder(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/place-order", placeOrderBody("ORD-1", "SAVETEN"), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ORD-1", body["orderId"])
	assert.InDelta(t, 100.0, body["totalAmount"], 0.001)
	assert.InDelta(t, 10.0, body["discount"], 0.001)
	assert.InDelta(t, 30.0, body["deliveryCharge"], 0.001)
	assert.InDelta(t, 120.0, body["finalAmount"], 0.001)

	stored := srv.orders.orders["ORD-1"]
	require.NotNil(t, stored)
	assert.Equal(t, int64(77), stored.UserID)

	resp = srv.do(t, http.MethodPost, "/place-order", withAddress(placeOrderBody("ORD-2", ""), 3), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	stored = srv.orders.orders["ORD-2"]
	require.NotNil(t, stored)
	require.NotNil(t, stored.AddressID)
	assert.Equal(t, int64(3), *stored.AddressID)
}

func TestPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:    "invalid coupon",
			body:    placeOrderBody("ORD-2", "NOPE"),
			status:  http.StatusUnprocessableEntity,
			message: "Invalid coupon code",
		},
		{
			name:    "missing order id",
			body:    placeOrderBody("", ""),
			status:  http.StatusBadRequest,
			message: "orderId: is required",
		},
		{
			name:    "malformed body",
			body:    `{"orderId":`,
			status:  http.StatusBadRequest,
		},
		{
			name:    "missing address",
			body:    withAddress(placeOrderBody("ORD-4", ""), 99),
			status:  http.StatusNotFound,
			message: address.ErrNotFound.Error(),
		},
		{
			name:    "address of another user",
			body:    withAddress(placeOrderBody("ORD-5", ""), 4),
			status:  http.StatusBadRequest,
			message: "address_id: does not belong to the user",
		},
		{
			name:    "unknown variant",
			body:    strings.Replace(placeOrderBody("ORD-6", ""), `"variantId": 10`, `"variantId": 999`, 1),
			status:  http.StatusNotFound,
			message: catalog.ErrVariantNotFound.Error(),
		},
		{
			name:    "wrong total",
			body:    strings.Replace(placeOrderBody("ORD-3", ""), `"totalAmount": 100`, `"totalAmount": 90`, 1),
			status:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			resp := srv.do(t, http.MethodPost, "/place-order", tt.body, false)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.InDelta(t, float64(tt.status), body["code"], 0)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
			assert.Empty(t, srv.orders.orders)
		})
	}
}

func TestPlaceOrderDuplicate(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/place-order", placeOrderBody("ORD-1", ""), false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/place-order", placeOrderBody("ORD-1", ""), false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, order.ErrDuplicateOrder.Error(), decodeBody(t, resp)["message"])
}

func TestListOrders(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/place-order", placeOrderBody("ORD-1", ""), false).StatusCode)

	t.Run("all orders require admin", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/orders", "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin sees all orders", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/orders", "", true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var views []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
		require.Len(t, views, 1)
		assert.Equal(t, "ORD-1", views[0]["orderId"])
		assert.Nil(t, views[0]["deliveryAddress"])
		items, ok := views[0]["items"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 1)
	})

	t.Run("by user id path", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/orders/77", "", false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var views []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
		assert.Len(t, views, 1)
	})

	t.Run("invalid mobile is rejected without a key", func(t *testing.T) {
		for _, mobile := range []string{"abc", "12345", "98765x"} {
			resp := srv.do(t, http.MethodGet, "/orders?mobile="+mobile, "", false)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, mobile)
		}
		for _, mobile := range []string{"", "%20%20"} {
			resp := srv.do(t, http.MethodGet, "/orders?mobile="+mobile, "", false)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, mobile)
		}
	})

	t.Run("by mobile", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/orders?mobile=%2B91%2098765-43210", "", false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var views []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
		assert.Len(t, views, 1)
	})

	t.Run("unknown user yields empty list", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/orders?user_id=5", "", false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var views []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})
}

func TestOrderStatusAndTabs(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/place-order", placeOrderBody("ORD-1", ""), false).StatusCode)

	resp := srv.do(t, http.MethodPut, "/orders/ORD-1/status", `{"orderStatus":"Shipped"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodPut, "/orders/ORD-9/status", `{"orderStatus":"Delivered"}`, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodPut, "/orders/ORD-1/status", `{"orderStatus":"Delivered"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/orders/tabs", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tabs tabsJSONForTest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tabs))
	assert.Empty(t, tabs.Pending)
	assert.Len(t, tabs.Delivered, 1)
	assert.Empty(t, tabs.Cancelled)
}

type tabsJSONForTest struct {
	Pending   []map[string]any `json:"pending"`
	Delivered []map[string]any `json:"delivered"`
	Cancelled []map[string]any `json:"cancelled"`
}

func TestOrderInvoice(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, http.StatusCreated,
		srv.do(t, http.MethodPost, "/place-order", placeOrderBody("ORD-1", "SAVETEN"), false).StatusCode)

	resp := srv.do(t, http.MethodGet, "/orders/ORD-1/invoice", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "ORD-1")
	assert.Contains(t, text, "Basmati Rice")
	assert.Contains(t, text, "SAVETEN")
}

func TestEarnings(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/earnings?from=2026-01-01&to=2026-01-02", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "2026-01-01", body["from"])
	assert.InDelta(t, 200.0, body["totalRevenue"], 0.001)
	assert.InDelta(t, 3.0, body["totalOrders"], 0)

	resp = srv.do(t, http.MethodGet, "/earnings?from=2026-01-05&to=2026-01-01", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/earnings?from=01/01/2026&to=2026-01-01", "", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateOffer(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		valid    bool
		discount float64
		final    float64
	}{
		{"applied", `{"code":"SAVETEN","cartValue":200}`, true, 20, 180},
		{"unknown code", `{"code":"NOPE","cartValue":200}`, false, 0, 200},
		{"bad charset", `{"code":"SAVE10","cartValue":200}`, false, 0, 200},
		{"below minimum", `{"code":"SAVETEN","cartValue":20}`, false, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/offers/validate", tt.body, false)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, tt.valid, body["valid"])
			assert.InDelta(t, tt.discount, body["discount"], 0.001)
			assert.InDelta(t, tt.final, body["finalValue"], 0.001)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestDeliverySettings(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPut, "/delivery-settings", `{"delivery_charge":40,"free_delivery_limit":600}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPut, "/delivery-settings", `{"delivery_charge":-1,"free_delivery_limit":600}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodPut, "/delivery-settings", `{"delivery_charge":40,"free_delivery_limit":600}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/delivery-settings", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.InDelta(t, 40.0, body["delivery_charge"], 0.001)
	assert.InDelta(t, 600.0, body["free_delivery_limit"], 0.001)
}

func TestCart(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/cart", `{"user_id":77,"product_id":1,"variant_id":10,"quantity":6}`, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/cart", `{"user_id":77,"product_id":1,"variant_id":99,"quantity":1}`, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/cart", `{"user_id":77,"product_id":1,"variant_id":10,"quantity":3}`, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/cart?user_id=77", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.InDelta(t, 150.0, body["subtotal"], 0.001)
	assert.Equal(t, false, body["isFreeDelivery"])
	assert.InDelta(t, 30.0, body["deliveryCharge"], 0.001)
	assert.InDelta(t, 350.0, body["amountRemainingForFreeDelivery"], 0.001)

	resp = srv.do(t, http.MethodDelete, "/cart?user_id=77&product_id=1&variant_id=10", "", false)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodDelete, "/cart/clear", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignupAndLogin(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/signup",
		`{"mobile":"91234 56789","name":"Ravi","password":"secret123","dob":"1990-05-01"}`, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "9123456789", body["mobile"])
	assert.Equal(t, "1990-05-01", body["dob"])
	assert.NotContains(t, body, "password")

	resp = srv.do(t, http.MethodPost, "/signup", `{"mobile":"9123456789","name":"Ravi","password":"secret123"}`, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/login", `{"mobile":"9123456789","password":"secret123"}`, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, bad := range []string{
		`{"mobile":"9123456789","password":"wrong"}`,
		`{"mobile":"9000000000","password":"secret123"}`,
	} {
		resp = srv.do(t, http.MethodPost, "/login", bad, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid credentials", decodeBody(t, resp)["message"])
	}
}

func TestReferenceData(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/contact-center", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1800-000-000", decodeBody(t, resp)["phone"])

	resp = srv.do(t, http.MethodGet, "/pincodes", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"560001", "560002"}, decodeBody(t, resp)["pincodes"])
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{user.ErrNotFound, http.StatusNotFound},
		{catalog.ErrInUse, http.StatusConflict},
		{coupon.ErrDuplicateCode, http.StatusConflict},
		{&coupon.InvalidOfferError{Reason: "bad"}, http.StatusBadRequest},
		{&order.InvalidCouponError{Code: "X", Message: "nope"}, http.StatusUnprocessableEntity},
		{pricing.ErrInvalidSetting, http.StatusBadRequest},
		{auth.ErrUnauthorized, http.StatusUnauthorized},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := statusOf(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}
