package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type fakeStore struct {
	prices map[string][]types.PricePoint
	rates  map[string]float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prices: make(map[string][]types.PricePoint),
		rates:  make(map[string]float64),
	}
}

func (f *fakeStore) GetDayPrices(_ context.Context, date time.Time) ([]types.PricePoint, error) {
	return f.prices[date.Format(slots.DateLayout)], nil
}

func (f *fakeStore) SaveDayPrices(_ context.Context, date time.Time, points []types.PricePoint) error {
	f.prices[date.Format(slots.DateLayout)] = points
	return nil
}

func (f *fakeStore) GetExchangeRate(_ context.Context, date time.Time, currency string) (float64, bool, error) {
	rate, ok := f.rates[date.Format(slots.DateLayout)+currency]
	return rate, ok, nil
}

func (f *fakeStore) SaveExchangeRate(_ context.Context, date time.Time, currency string, rate float64) error {
	f.rates[date.Format(slots.DateLayout)+currency] = rate
	return nil
}

type fakeProvider struct {
	points []types.PricePoint
	rate   float64
	err    error
	calls  int
}

func (f *fakeProvider) DayPrices(_ context.Context, _ time.Time) ([]types.PricePoint, error) {
	f.calls++
	return f.points, f.err
}

func (f *fakeProvider) Rate(_ context.Context, _ time.Time) (float64, error) {
	f.calls++
	return f.rate, f.err
}

func fullDay() []types.PricePoint {
	points := make([]types.PricePoint, 24)
	for h := 0; h < 24; h++ {
		points[h] = types.PricePoint{Slot: slots.New(h, 0), Value: float64(h)}
	}
	return points
}

func TestDayPricesCachesCompleteDay(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{points: fullDay()}
	source := NewCachedSource(store, provider, &fakeProvider{}, "EUR")

	ctx := context.Background()
	if _, err := source.DayPrices(ctx, testDate, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := source.DayPrices(ctx, testDate, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("expected a single upstream fetch, got %d", provider.calls)
	}
	if len(store.prices["2025-03-10"]) != 24 {
		t.Errorf("expected full day in cache, got %d slots", len(store.prices["2025-03-10"]))
	}
}

func TestDayPricesForceBypassesCache(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{points: fullDay()}
	source := NewCachedSource(store, provider, &fakeProvider{}, "EUR")

	ctx := context.Background()
	source.DayPrices(ctx, testDate, false)
	source.DayPrices(ctx, testDate, true)

	if provider.calls != 2 {
		t.Errorf("force must refetch, got %d upstream calls", provider.calls)
	}
}

func TestDayPricesPartialDayNotCached(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{points: fullDay()[:23]}
	source := NewCachedSource(store, provider, &fakeProvider{}, "EUR")

	points, err := source.DayPrices(context.Background(), testDate, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 23 {
		t.Errorf("partial day must still be returned, got %d slots", len(points))
	}
	if len(store.prices) != 0 {
		t.Error("partial day must not be persisted")
	}
}

func TestDayPricesNotFoundNotCached(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{err: types.ErrPriceNotFound}
	source := NewCachedSource(store, provider, &fakeProvider{}, "EUR")

	_, err := source.DayPrices(context.Background(), testDate, false)
	if !errors.Is(err, types.ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound, got %v", err)
	}
	if len(store.prices) != 0 {
		t.Error("a not-found answer must not be persisted")
	}
}

func TestRateCached(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{rate: 24.725}
	source := NewCachedSource(store, &fakeProvider{}, provider, "EUR")

	ctx := context.Background()
	rate, err := source.Rate(ctx, testDate, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 24.725 {
		t.Errorf("expected 24.725, got %f", rate)
	}

	source.Rate(ctx, testDate, false)
	if provider.calls != 1 {
		t.Errorf("expected a single upstream fetch, got %d", provider.calls)
	}
}

func TestRateUnavailablePassesThrough(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{err: types.ErrRateUnavailable}
	source := NewCachedSource(store, &fakeProvider{}, provider, "EUR")

	_, err := source.Rate(context.Background(), testDate, false)
	if !errors.Is(err, types.ErrRateUnavailable) {
		t.Errorf("expected ErrRateUnavailable, got %v", err)
	}
}
