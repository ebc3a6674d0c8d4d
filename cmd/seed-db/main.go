// Command seed-db loads the starter catalog, offers, delivery setting and
// admin credentials into the database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/grocer-kart/internal/domain/auth"
	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/coupon"
	"github.com/xenking/grocer-kart/internal/domain/pricing"
	"github.com/xenking/grocer-kart/internal/storage/postgres"
)

type seedFile struct {
	Categories []string      `json:"categories"`
	Products   []productJSON `json:"products"`
	Offers     []offerJSON   `json:"offers"`
	Delivery   *struct {
		Charge    decimal.Decimal `json:"delivery_charge"`
		FreeAbove decimal.Decimal `json:"free_delivery_limit"`
	} `json:"delivery"`
	Admin *struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"admin"`
}

type productJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Variants    []struct {
		QuantityValue string              `json:"quantity_value"`
		Price         decimal.Decimal     `json:"price"`
		MRP           decimal.NullDecimal `json:"mrp"`
	} `json:"variants"`
}

type offerJSON struct {
	Code            string              `json:"code"`
	Description     string              `json:"description"`
	StartDate       string              `json:"start_date"`
	EndDate         string              `json:"end_date"`
	MinCartValue    decimal.Decimal     `json:"min_cart_value"`
	MaxCartValue    decimal.Decimal     `json:"max_cart_value"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	MaxDiscount     decimal.NullDecimal `json:"max_discount"`
}

func main() {
	_ = godotenv.Load()

	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyPepper string
		timezone     string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/seed.json", "path to the seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or GROCER_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or GROCER_API_KEY_PEPPER env)")
	flag.StringVar(&timezone, "timezone", "Asia/Kolkata", "timezone of the offer dates")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GROCER_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("GROCER_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s := &seeder{lg: lg, apiKey: apiKey, pepper: []byte(apiKeyPepper)}
	if s.loc, err = time.LoadLocation(timezone); err != nil {
		lg.Fatal("Invalid timezone", zap.String("timezone", timezone), zap.Error(err))
	}
	if err := s.run(ctx, databaseURL, seedPath); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

type seeder struct {
	lg     *zap.Logger
	loc    *time.Location
	apiKey string
	pepper []byte
}

func (s *seeder) run(ctx context.Context, databaseURL, seedPath string) error {
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	s.lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := s.seedCatalog(ctx, catalog.NewService(postgres.NewCatalogRepository(pool)), seed); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := s.seedOffers(ctx, postgres.NewOfferRepository(pool), seed.Offers); err != nil {
		return errors.Wrap(err, "seed offers")
	}
	if seed.Delivery != nil {
		q := pricing.NewQuoter(postgres.NewDeliveryRepository(pool))
		if err := q.Update(ctx, pricing.DeliverySetting{
			DeliveryCharge:    seed.Delivery.Charge,
			FreeDeliveryLimit: seed.Delivery.FreeAbove,
		}); err != nil {
			return errors.Wrap(err, "seed delivery setting")
		}
		s.lg.Info("Delivery setting stored")
	}
	if seed.Admin != nil {
		if err := s.seedAdmin(ctx, postgres.NewUserRepository(pool), seed.Admin.Username, seed.Admin.Password); err != nil {
			return errors.Wrap(err, "seed admin")
		}
	}
	if s.apiKey != "" {
		if err := s.seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool)); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}
	return nil
}

func (s *seeder) seedCatalog(ctx context.Context, svc *catalog.Service, seed seedFile) error {
	for _, name := range seed.Categories {
		err := svc.CreateCategory(ctx, &catalog.Category{Name: name})
		if err != nil && !errors.Is(err, catalog.ErrDuplicateName) {
			return errors.Wrapf(err, "category %q", name)
		}
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]int64, len(cats))
	for _, c := range cats {
		ids[c.Name] = c.ID
	}
	s.lg.Info("Categories ready", zap.Int("count", len(cats)))

	created := 0
	for _, pj := range seed.Products {
		catID, ok := ids[pj.Category]
		if !ok {
			return errors.Errorf("product %q: unknown category %q", pj.Name, pj.Category)
		}
		p := &catalog.Product{
			Name:        pj.Name,
			Description: pj.Description,
			CategoryID:  catID,
			Status:      catalog.StatusEnabled,
		}
		for _, v := range pj.Variants {
			p.Variants = append(p.Variants, catalog.Variant{
				QuantityValue: v.QuantityValue,
				Price:         v.Price,
				MRP:           v.MRP,
			})
		}
		switch err := svc.CreateProduct(ctx, p); {
		case errors.Is(err, catalog.ErrDuplicateName):
			s.lg.Debug("Product exists", zap.String("name", pj.Name))
		case err != nil:
			return err
		default:
			created++
		}
	}
	s.lg.Info("Products ready", zap.Int("created", created), zap.Int("total", len(seed.Products)))
	return nil
}

func (s *seeder) seedOffers(ctx context.Context, repo *postgres.OfferRepository, in []offerJSON) error {
	if len(in) == 0 {
		return nil
	}
	offers := make([]coupon.Offer, 0, len(in))
	for _, oj := range in {
		start, err := time.ParseInLocation(time.DateOnly, oj.StartDate, s.loc)
		if err != nil {
			return errors.Wrapf(err, "offer %q start date", oj.Code)
		}
		end, err := time.ParseInLocation(time.DateOnly, oj.EndDate, s.loc)
		if err != nil {
			return errors.Wrapf(err, "offer %q end date", oj.Code)
		}
		o := coupon.Offer{
			Code:            oj.Code,
			Description:     oj.Description,
			StartDate:       start,
			EndDate:         end,
			MinCartValue:    oj.MinCartValue,
			MaxCartValue:    oj.MaxCartValue,
			DiscountPercent: oj.DiscountPercent,
			MaxDiscount:     oj.MaxDiscount,
		}
		if err := coupon.Normalize(&o); err != nil {
			return errors.Wrapf(err, "offer %q", oj.Code)
		}
		offers = append(offers, o)
	}

	n, err := repo.UpsertBatch(ctx, offers)
	if err != nil {
		return err
	}
	s.lg.Info("Offers upserted", zap.Int64("rows", n))
	return nil
}

func (s *seeder) seedAdmin(ctx context.Context, repo *postgres.UserRepository, username, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	id, err := repo.UpsertAdmin(ctx, username, string(hash))
	if err != nil {
		return err
	}
	s.lg.Info("Admin account ready", zap.String("username", username), zap.Int64("id", id))
	return nil
}

func (s *seeder) seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository) error {
	if err := repo.Upsert(ctx, auth.APIKeyInfo{
		ID:      "admin",
		KeyHash: auth.HashKey(s.pepper, s.apiKey),
		Name:    "Admin console key",
		Scopes:  []string{auth.ScopeAdmin},
	}); err != nil {
		return err
	}
	s.lg.Info("Admin API key stored", zap.String("id", "admin"))
	return nil
}
