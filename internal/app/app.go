package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/grocer-kart/internal/domain/address"
	"github.com/xenking/grocer-kart/internal/domain/auth"
	"github.com/xenking/grocer-kart/internal/domain/banner"
	"github.com/xenking/grocer-kart/internal/domain/cart"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/order"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/domain/user"
	"github.com/xenking/grocer-kart/internal/handler"
	"github.com/xenking/grocer-kart/internal/storage/postgres"
	"github.com/xenking/grocer-kart/pkg/health"
	"github.com/xenking/grocer-kart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PoolCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)
	addressRepo := postgres.NewAddressRepository(pool)

	// Domain services.
	users := user.NewService(userRepo, cfg.BcryptCost)
	quoter := pricing.NewQuoter(deliveryRepo)
	validator := coupon.NewRepoValidator(offerRepo, loc)
	orders, err := order.NewService(
		postgres.NewOrderRepository(pool, loc),
		users,
		addressRepo,
		validator,
		quoter,
		cfg.Store.MaxCartQuantity,
		m.MeterProvider().Meter("grocer"),
	)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}

	h := handler.New(handler.Config{
		Reference: handler.Reference{
			ContactPhone: cfg.Reference.ContactPhone,
			ContactEmail: cfg.Reference.ContactEmail,
			ContactHours: cfg.Reference.ContactHours,
			Pincodes:     cfg.Reference.Pincodes,
		},
		Location: loc,
	}, handler.Services{
		Users:     users,
		Addresses: address.NewService(addressRepo, cfg.Store.MaxAddresses),
		Catalog:   catalog.NewService(catalogRepo),
		Cart:      cart.NewService(postgres.NewCartRepository(pool), catalogRepo, quoter, cfg.Store.MaxCartQuantity),
		Orders:    orders,
		Offers:    coupon.NewService(offerRepo),
		Coupons:   validator,
		Delivery:  quoter,
		Banners:   banner.NewService(postgres.NewBannerRepository(pool)),
		Auth:      auth.NewAuthenticator(postgres.NewAPIKeyRepository(pool), []byte(cfg.APIKeyPepper)),
	})

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-API-Key", "api_key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("grocer-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
