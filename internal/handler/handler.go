// Package handler exposes the domain services as a JSON-over-HTTP API.
package handler

import (
	"net/http"
	"time"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/auth"
	"github.com/xenking/grocer-kart/internal/domain/banner"
	"github.com/xenking/grocer-kart/internal/domain/cart"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/domain/user"
)

// Reference is the static data served to the shopper app.
type Reference struct {
	ContactPhone string
	ContactEmail string
	ContactHours string
	Pincodes     []string
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	Reference Reference
	// Location is the timezone used to parse calendar dates in requests.
	Location *time.Location
}

// Services are the domain services the Handler delegates to.
type Services struct {
	Users     *user.Service
	Addresses *address.Service
	Catalog   *catalog.Service
	Cart      *cart.Service
	Orders    *order.Service
	Offers    *coupon.Service
	Coupons   coupon.Validator
	Delivery  *pricing.Quoter
	Banners   *banner.Service
	Auth      *auth.Authenticator
}

// Handler serves the grocery API.
type Handler struct {
	svc Services
	ref Reference
	loc *time.Location
}

// New constructs a Handler with the required domain services.
func New(cfg Config, svc Services) *Handler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, ref: cfg.Reference, loc: loc}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Accounts.
	mux.HandleFunc("POST /signup", h.handle(h.signup))
	mux.HandleFunc("POST /login", h.handle(h.login))
	mux.HandleFunc("POST /admin-login", h.handle(h.adminLogin))
	mux.HandleFunc("GET /users/{mobile}", h.handle(h.getUser))
	mux.HandleFunc("PUT /users/{mobile}", h.handle(h.updateUser))
	mux.HandleFunc("DELETE /users/{mobile}", h.handle(h.deleteUser))

	// Address book.
	mux.HandleFunc("GET /addresses", h.handle(h.listAddresses))
	mux.HandleFunc("POST /addresses", h.handle(h.createAddress))
	mux.HandleFunc("PUT /addresses/{id}", h.handle(h.updateAddress))
	mux.HandleFunc("DELETE /addresses/{id}", h.handle(h.deleteAddress))
	mux.HandleFunc("GET /addresses/{id}/pending-orders", h.handle(h.addressPendingOrders))

	// Catalog.
	mux.HandleFunc("GET /categories", h.handle(h.listCategories))
	mux.HandleFunc("POST /categories", h.admin(h.createCategory))
	mux.HandleFunc("PUT /categories/{id}", h.admin(h.updateCategory))
	mux.HandleFunc("DELETE /categories/{id}", h.admin(h.deleteCategory))
	mux.HandleFunc("GET /products", h.handle(h.listProducts))
	mux.HandleFunc("GET /products/{id}", h.handle(h.getProduct))
	mux.HandleFunc("POST /products", h.admin(h.createProduct))
	mux.HandleFunc("PUT /products/{id}", h.admin(h.updateProduct))
	mux.HandleFunc("DELETE /products/{id}", h.admin(h.deleteProduct))
	mux.HandleFunc("PUT /products/{id}/status", h.admin(h.setProductStatus))
	mux.HandleFunc("POST /images", h.admin(h.uploadImage))

	// Cart.
	mux.HandleFunc("GET /cart", h.handle(h.getCart))
	mux.HandleFunc("POST /cart", h.handle(h.upsertCart))
	mux.HandleFunc("DELETE /cart", h.handle(h.removeCartLine))
	mux.HandleFunc("DELETE /cart/clear", h.handle(h.clearCart))

	// Orders.
	mux.HandleFunc("POST /place-order", h.handle(h.placeOrder))
	mux.HandleFunc("GET /orders", h.handle(h.listOrders))
	mux.HandleFunc("GET /orders/tabs", h.admin(h.orderTabs))
	mux.HandleFunc("GET /orders/{userId}", h.handle(h.listUserOrders))
	mux.HandleFunc("GET /orders/{id}/invoice", h.admin(h.orderInvoice))
	mux.HandleFunc("PUT /orders/{id}/status", h.admin(h.updateOrderStatus))
	mux.HandleFunc("GET /earnings", h.admin(h.earnings))

	// Offers and delivery.
	mux.HandleFunc("POST /offers/validate", h.handle(h.validateOffer))
	mux.HandleFunc("GET /offers", h.admin(h.listOffers))
	mux.HandleFunc("POST /offers", h.admin(h.createOffer))
	mux.HandleFunc("PUT /offers/{id}", h.admin(h.updateOffer))
	mux.HandleFunc("DELETE /offers/{id}", h.admin(h.deleteOffer))
	mux.HandleFunc("GET /delivery-settings", h.handle(h.getDeliverySettings))
	mux.HandleFunc("PUT /delivery-settings", h.admin(h.updateDeliverySettings))

	// Banners.
	mux.HandleFunc("GET /banners", h.handle(h.listBanners))
	mux.HandleFunc("POST /banners", h.admin(h.createBanner))
	mux.HandleFunc("PUT /banners/{id}", h.admin(h.updateBanner))
	mux.HandleFunc("DELETE /banners/{id}", h.admin(h.deleteBanner))

	// Reference data.
	mux.HandleFunc("GET /contact-center", h.handle(h.contactCenter))
	mux.HandleFunc("GET /pincodes", h.handle(h.pincodes))
}
