package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/grocer-kart/internal/domain/coupon"
)

const bloomFPR = 0.001

// fileResult is the outcome of parsing one file.
type fileResult struct {
	offers  []coupon.Offer
	skipped int
}

// parseFiles parses every file concurrently. Results keep the order of
// files.
func parseFiles(ctx context.Context, lg *zap.Logger, files []string, loc *time.Location) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			res, err := parseFile(ctx, path, loc)
			if err != nil {
				return errors.Wrapf(err, "file %s", path)
			}
			lg.Info("Parsed offer file",
				zap.String("file", path),
				zap.Int("offers", len(res.offers)),
				zap.Int("skipped", res.skipped),
			)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(ctx context.Context, path string, loc *time.Location) (fileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileResult{}, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return fileResult{}, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	return parseCSV(ctx, gz, loc)
}

// parseCSV reads offer rows from r. Rows that fail to parse or break the
// offer rules are counted and skipped; an optional header row is ignored.
func parseCSV(ctx context.Context, r io.Reader, loc *time.Location) (fileResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var res fileResult
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return fileResult{}, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.skipped++
				continue
			}
			return fileResult{}, errors.Wrapf(err, "read line %d", line)
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "code") {
			continue
		}

		o, err := parseRecord(rec, loc)
		if err != nil {
			res.skipped++
			continue
		}
		res.offers = append(res.offers, o)
	}
}

func parseRecord(rec []string, loc *time.Location) (coupon.Offer, error) {
	if len(rec) < 6 || len(rec) > 7 {
		return coupon.Offer{}, errors.Errorf("want 6 or 7 fields, got %d", len(rec))
	}
	field := func(i int) string { return strings.TrimSpace(rec[i]) }

	start, err := time.ParseInLocation(time.DateOnly, field(1), loc)
	if err != nil {
		return coupon.Offer{}, errors.Wrap(err, "start date")
	}
	end, err := time.ParseInLocation(time.DateOnly, field(2), loc)
	if err != nil {
		return coupon.Offer{}, errors.Wrap(err, "end date")
	}

	var amounts [3]decimal.Decimal
	for i := range amounts {
		if amounts[i], err = decimal.NewFromString(field(3 + i)); err != nil {
			return coupon.Offer{}, errors.Wrapf(err, "field %d", 4+i)
		}
	}

	o := coupon.Offer{
		Code:            field(0),
		StartDate:       start,
		EndDate:         end,
		MinCartValue:    amounts[0],
		MaxCartValue:    amounts[1],
		DiscountPercent: amounts[2],
	}
	if len(rec) == 7 && field(6) != "" {
		limit, err := decimal.NewFromString(field(6))
		if err != nil {
			return coupon.Offer{}, errors.Wrap(err, "max discount")
		}
		o.MaxDiscount = decimal.NewNullDecimal(limit)
	}
	if err := coupon.Normalize(&o); err != nil {
		return coupon.Offer{}, err
	}
	return o, nil
}

// mergeUnique concatenates results in order, dropping any code already
// taken by an earlier row. The bloom filter answers most lookups; the exact
// set confirms its positives.
func mergeUnique(results []fileResult) ([]coupon.Offer, int) {
	total := 0
	for _, r := range results {
		total += len(r.offers)
	}
	filter := bloom.NewWithEstimates(uint(max(total, 1)), bloomFPR)
	seen := make(map[string]struct{}, total)

	out := make([]coupon.Offer, 0, total)
	dropped := 0
	for _, r := range results {
		for _, o := range r.offers {
			if filter.TestString(o.Code) {
				if _, dup := seen[o.Code]; dup {
					dropped++
					continue
				}
			}
			filter.AddString(o.Code)
			seen[o.Code] = struct{}{}
			out = append(out, o)
		}
	}
	return out, dropped
}
