// Package fetcher drives the batch collection loop: one provider search per
// (origin, destination, date) triple, filtered and appended to the raw file.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"faretrack/internal/cache"
	"faretrack/internal/models"
	"faretrack/internal/provider"
	"faretrack/internal/ratelimit"
	"faretrack/internal/storage"
)

const dateLayout = "2006-01-02"

// Offers with more than this many segments (more than one stop) are dropped.
const maxSegments = 2

const defaultPriceCeiling = 400

// InvalidDateError reports a requested departure date that precedes the
// current date. The call fails before any network or file I/O happens.
type InvalidDateError struct {
	Date string
}

func (e *InvalidDateError) Error() string {
	return "departure date " + e.Date + " is in the past"
}

type Options struct {
	// PriceCeiling is the maximum acceptable total price in the provider's
	// reference currency. Zero means the default of 400.
	PriceCeiling float64
	Cache        cache.Cache
	Limiter      *ratelimit.Limiter
	Logger       *log.Logger
}

type Fetcher struct {
	client  provider.Client
	cache   cache.Cache
	limiter *ratelimit.Limiter
	logger  *log.Logger
	ceiling float64

	now func() time.Time
}

func New(client provider.Client, opts Options) *Fetcher {
	if opts.PriceCeiling <= 0 {
		opts.PriceCeiling = defaultPriceCeiling
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Fetcher{
		client:  client,
		cache:   opts.Cache,
		limiter: opts.Limiter,
		logger:  opts.Logger,
		ceiling: opts.PriceCeiling,
		now:     time.Now,
	}
}

// FetchOneDay searches one route for one departure date, appends the accepted
// offers to outPath and returns them. A provider-side error is logged with
// route context and yields no rows rather than an error, so calling loops
// carry on with the next day.
func (f *Fetcher) FetchOneDay(ctx context.Context, origin, destination, date, outPath string, adults int) ([]models.Offer, error) {
	departure, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse departure date %q: %w", date, err)
	}
	now := f.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if departure.Before(today) {
		return nil, &InvalidDateError{Date: date}
	}

	query := models.SearchQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: date,
		Adults:        adults,
	}

	offers, hit := f.cache.Get(ctx, query)
	if !hit {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		offers, err = f.client.Search(ctx, query)
		if err != nil {
			var provErr *provider.ProviderError
			if errors.As(err, &provErr) {
				f.logger.Error("search failed",
					"origin", origin, "destination", destination, "date", date,
					"code", provErr.Code, "err", provErr)
			} else {
				f.logger.Error("search failed",
					"origin", origin, "destination", destination, "date", date,
					"err", err)
			}
			return nil, nil
		}
		_ = f.cache.Set(ctx, query, offers)
	}

	accepted, rows := f.filter(offers)
	if err := storage.AppendRawRows(outPath, rows); err != nil {
		return nil, fmt.Errorf("append accepted offers: %w", err)
	}

	f.logger.Debug("day fetched",
		"origin", origin, "destination", destination, "date", date,
		"offers", len(offers), "accepted", len(accepted), "cache_hit", hit)

	return accepted, nil
}

// filter applies the acceptance policy and flattens each surviving offer into
// a raw row: unparseable or over-ceiling prices and itineraries with more
// than two segments are skipped without error.
func (f *Fetcher) filter(offers []models.Offer) ([]models.Offer, []models.RawRow) {
	var accepted []models.Offer
	var rows []models.RawRow

	for _, offer := range offers {
		price, err := strconv.ParseFloat(offer.Total, 64)
		if err != nil {
			f.logger.Debug("skipping offer with unparseable price", "total", offer.Total)
			continue
		}
		if price > f.ceiling {
			continue
		}
		if len(offer.Segments) == 0 || len(offer.Segments) > maxSegments {
			continue
		}

		first := offer.Segments[0]
		row := models.RawRow{
			Currency:      offer.Currency,
			Price:         price,
			Date:          first.DepartureAt,
			Stops:         offer.Stops(),
			Origin:        first.Origin,
			Destination:   first.Destination,
			Duration:      first.Duration,
			TotalDuration: offer.Duration,
		}
		if offer.Stops() > 0 {
			second := offer.Segments[1]
			row.AltOrigin = second.Origin
			row.AltDestination = second.Destination
			row.AltDuration = second.Duration
		}

		accepted = append(accepted, offer)
		rows = append(rows, row)
	}

	return accepted, rows
}

// FetchDateRange fetches every calendar day in [start, end] inclusive,
// sequentially. Failed days are logged and skipped; the range always runs to
// the end unless the context is cancelled.
func (f *Fetcher) FetchDateRange(ctx context.Context, origin, destination string, start, end time.Time, outPath string, adults int) error {
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}

		date := day.Format(dateLayout)
		if _, err := f.FetchOneDay(ctx, origin, destination, date, outPath, adults); err != nil {
			var invalid *InvalidDateError
			if errors.As(err, &invalid) {
				f.logger.Warn("skipping past date", "origin", origin, "destination", destination, "date", date)
				continue
			}
			f.logger.Error("day failed", "origin", origin, "destination", destination, "date", date, "err", err)
		}
	}
	return nil
}

// FetchAcrossDestinations runs FetchDateRange once per destination from the
// same origin.
func (f *Fetcher) FetchAcrossDestinations(ctx context.Context, origin string, destinations []string, start, end time.Time, outPath string, adults int) error {
	for _, destination := range destinations {
		if err := f.FetchDateRange(ctx, origin, destination, start, end, outPath, adults); err != nil {
			return err
		}
		f.logger.Info("route retrieved", "origin", origin, "destination", destination)
	}
	return nil
}

// FetchAcrossOrigins runs FetchDateRange once per origin toward the same
// destination.
func (f *Fetcher) FetchAcrossOrigins(ctx context.Context, origins []string, destination string, start, end time.Time, outPath string, adults int) error {
	for _, origin := range origins {
		if err := f.FetchDateRange(ctx, origin, destination, start, end, outPath, adults); err != nil {
			return err
		}
		f.logger.Info("route retrieved", "origin", origin, "destination", destination)
	}
	return nil
}
