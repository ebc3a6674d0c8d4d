// Command offer-ingest bulk-loads offers from gzip-compressed CSV files.
//
// Each line is CODE,start,end,min,max,percent[,max_discount] with dates in
// YYYY-MM-DD form. Files are parsed concurrently; a code seen in an earlier
// file (in argument order) wins over later duplicates.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xenking/grocer-kart/internal/storage/postgres"
)

const batchSize = 5000

func main() {
	_ = godotenv.Load()

	var (
		dataDir     string
		databaseURL string
		timezone    string
		dryRun      bool
	)
	flag.StringVar(&dataDir, "data-dir", "data", "directory with *.csv.gz offer files, used when no files are given")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&timezone, "timezone", "Asia/Kolkata", "timezone of the offer dates")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and deduplicate without writing")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, flag.Args(), dataDir, databaseURL, timezone, dryRun); err != nil {
		lg.Fatal("Offer ingest failed", zap.Error(err))
	}
	lg.Info("Offer ingest completed")
}

func run(ctx context.Context, lg *zap.Logger, files []string, dataDir, databaseURL, timezone string, dryRun bool) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return errors.Wrapf(err, "load timezone %q", timezone)
	}
	if len(files) == 0 {
		files, err = filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
		if err != nil {
			return errors.Wrap(err, "list offer files")
		}
	}
	if len(files) == 0 {
		return errors.Errorf("no offer files found in %s", dataDir)
	}

	lg.Info("Parsing offer files", zap.Int("files", len(files)))
	parsed, err := parseFiles(ctx, lg, files, loc)
	if err != nil {
		return errors.Wrap(err, "parse offer files")
	}

	offers, dropped := mergeUnique(parsed)
	lg.Info("Offers ready",
		zap.Int("unique", len(offers)),
		zap.Int("duplicates_dropped", dropped),
	)
	if dryRun || len(offers) == 0 {
		return nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewOfferRepository(pool)
	var written int64
	for start := 0; start < len(offers); start += batchSize {
		end := min(start+batchSize, len(offers))
		n, err := repo.UpsertBatch(ctx, offers[start:end])
		if err != nil {
			return errors.Wrapf(err, "upsert offers %d-%d", start, end)
		}
		written += n
		lg.Info("Write progress", zap.Int("done", end), zap.Int("total", len(offers)))
	}
	lg.Info("Offers written", zap.Int64("rows", written))
	return nil
}
