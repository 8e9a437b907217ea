// Package market combines the upstream price and exchange-rate providers
// with the SQLite cache. It is the only place that decides when to hit the
// network; the pricing core just asks for data.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

// Full-day slot counts; only complete days are worth caching.
const (
	hourlySlots  = 24
	quarterSlots = 96
)

// Store is the cache backend, satisfied by *database.Database.
type Store interface {
	GetDayPrices(ctx context.Context, date time.Time) ([]types.PricePoint, error)
	SaveDayPrices(ctx context.Context, date time.Time, points []types.PricePoint) error
	GetExchangeRate(ctx context.Context, date time.Time, currency string) (float64, bool, error)
	SaveExchangeRate(ctx context.Context, date time.Time, currency string, rate float64) error
}

// CachedSource implements types.MarketSource on top of a cache store and
// the upstream providers.
type CachedSource struct {
	logger   *slog.Logger
	store    Store
	prices   types.PriceProvider
	rates    types.RateProvider
	currency string
}

func NewCachedSource(store Store, prices types.PriceProvider, rates types.RateProvider, currency string) *CachedSource {
	return &CachedSource{
		logger:   slog.Default().With("module", "market"),
		store:    store,
		prices:   prices,
		rates:    rates,
		currency: currency,
	}
}

func (s *CachedSource) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// DayPrices returns the market points for a date, from the cache when
// possible. Partial days (daylight-saving gaps, half-published data) are
// returned for immediate use but never persisted, and upstream "not found"
// answers are never cached either.
func (s *CachedSource) DayPrices(ctx context.Context, date time.Time, force bool) ([]types.PricePoint, error) {
	day := date.Format(slots.DateLayout)

	if !force {
		cached, err := s.store.GetDayPrices(ctx, date)
		if err != nil {
			s.logger.Warn("price cache read failed", slog.String("date", day), slog.Any("error", err))
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	points, err := s.prices.DayPrices(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("upstream prices for %s: %w", day, err)
	}

	if len(points) == hourlySlots || len(points) == quarterSlots {
		if err := s.store.SaveDayPrices(ctx, date, points); err != nil {
			s.logger.Error("price cache write failed", slog.String("date", day), slog.Any("error", err))
		}
	} else {
		s.logger.Warn("not caching partial day",
			slog.String("date", day),
			slog.Int("slots", len(points)))
	}

	return points, nil
}

// Rate returns the conversion rate for a date, from the cache when possible.
func (s *CachedSource) Rate(ctx context.Context, date time.Time, force bool) (float64, error) {
	day := date.Format(slots.DateLayout)

	if !force {
		rate, ok, err := s.store.GetExchangeRate(ctx, date, s.currency)
		if err != nil {
			s.logger.Warn("rate cache read failed", slog.String("date", day), slog.Any("error", err))
		} else if ok {
			return rate, nil
		}
	}

	rate, err := s.rates.Rate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("upstream rate for %s: %w", day, err)
	}

	if err := s.store.SaveExchangeRate(ctx, date, s.currency, rate); err != nil {
		s.logger.Error("rate cache write failed", slog.String("date", day), slog.Any("error", err))
	}

	return rate, nil
}
