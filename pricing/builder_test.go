package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// fakeSource serves canned market data, keyed by date.
type fakeSource struct {
	points map[string][]types.PricePoint
	rates  map[string]float64
}

func (f *fakeSource) DayPrices(_ context.Context, date time.Time, _ bool) ([]types.PricePoint, error) {
	points, ok := f.points[date.Format(slots.DateLayout)]
	if !ok {
		return nil, types.ErrPriceNotFound
	}
	return points, nil
}

func (f *fakeSource) Rate(_ context.Context, date time.Time, _ bool) (float64, error) {
	rate, ok := f.rates[date.Format(slots.DateLayout)]
	if !ok {
		return 0, types.ErrRateUnavailable
	}
	return rate, nil
}

func flatDay(value float64) []types.PricePoint {
	points := make([]types.PricePoint, 24)
	for h := 0; h < 24; h++ {
		points[h] = types.PricePoint{Slot: slots.New(h, 0), Value: value}
	}
	return points
}

func hourlyDay(values ...float64) []types.PricePoint {
	points := make([]types.PricePoint, len(values))
	for h, v := range values {
		points[h] = types.PricePoint{Slot: slots.New(h, 0), Value: v}
	}
	return points
}

func almostEqual(f1 float64, f2 float64) bool {
	return math.Abs(f1-f2) < 1e-9
}

func TestDeriveFeesAndVat(t *testing.T) {
	params := Params{
		KwhFeesLow:  0.1,
		KwhFeesHigh: 0.2,
		SellFees:    0.45,
		VAT:         1.21,
		LowTariff:   map[slots.Slot]bool{"0:00": true},
	}

	set := Derive(testDate, flatDay(1.0), 25.0, params, types.Evaluation{})

	total0, ok := set.Total.Value("0:00")
	if !ok {
		t.Fatal("slot 0:00 missing from total series")
	}
	if !almostEqual(total0, (1.0*25.0/1000+0.1)*1.21) {
		t.Errorf("low tariff total expected 0.15125, got %f", total0)
	}

	total1, _ := set.Total.Value("1:00")
	if !almostEqual(total1, 0.27225) {
		t.Errorf("high tariff total expected 0.27225, got %f", total1)
	}

	spot0, _ := set.Spot.Value("0:00")
	if !almostEqual(spot0, 0.025) {
		t.Errorf("spot expected 0.025, got %f", spot0)
	}

	sell0, _ := set.Sell.Value("0:00")
	if !almostEqual(sell0, 0.025-0.45) {
		t.Errorf("sell expected spot minus sell fees, got %f", sell0)
	}
}

func TestDeriveSortedViewIsStableAscending(t *testing.T) {
	points := hourlyDay(5, 3, 3, 1, 4, 3)
	set := Derive(testDate, points, 1000.0, Params{VAT: 1.0}, types.Evaluation{})

	sorted := set.TotalSorted.Prices
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Value > sorted[i].Value {
			t.Fatalf("sorted view not ascending at %d: %v", i, sorted)
		}
	}

	// The three tied slots keep their original insertion order.
	expected := []slots.Slot{"3:00", "1:00", "2:00", "5:00", "4:00", "0:00"}
	if !reflect.DeepEqual(set.TotalSorted.Keys(), expected) {
		t.Errorf("expected stable order %v, got %v", expected, set.TotalSorted.Keys())
	}
}

func TestDeriveCurrentValueOnlyForToday(t *testing.T) {
	points := hourlyDay(1, 2, 3)
	params := Params{VAT: 1.0}

	notToday := Derive(testDate, points, 1000.0, params, types.Evaluation{Slot: "1:00", IsToday: false})
	if notToday.Total.Now.IsValid() {
		t.Error("now must stay absent when the date is not today")
	}

	today := Derive(testDate, points, 1000.0, params, types.Evaluation{Slot: "1:00", IsToday: true})
	if !today.Total.Now.IsValid() || !almostEqual(today.Total.Now.Value(), 2.0) {
		t.Errorf("now expected 2.0, got %+v", today.Total.Now)
	}
	if !today.TotalSorted.Now.IsValid() {
		t.Error("sorted view should carry the same now value")
	}

	missingSlot := Derive(testDate, points, 1000.0, params, types.Evaluation{Slot: "23:00", IsToday: true})
	if missingSlot.Total.Now.IsValid() {
		t.Error("now must stay absent when the evaluation slot is not in the series")
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	points := hourlyDay(4, 2, 9, 1)
	params := Params{KwhFeesLow: 0.5, KwhFeesHigh: 1.5, SellFees: 0.45, VAT: 1.21,
		LowTariff: map[slots.Slot]bool{"1:00": true}}
	eval := types.Evaluation{Slot: "1:00", IsToday: false}

	first := Derive(testDate, points, 24.5, params, eval)
	second := Derive(testDate, points, 24.5, params, eval)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must yield identical derived sets")
	}
}

func TestDaySetNoMarketData(t *testing.T) {
	source := &fakeSource{
		points: map[string][]types.PricePoint{},
		rates:  map[string]float64{"2025-03-10": 25.0},
	}
	calc := NewCalculator(source)

	_, err := calc.DaySet(context.Background(), testDate, types.Evaluation{}, Params{VAT: 1}, false)
	if !errors.Is(err, types.ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestDaySetEmptyDayIsNotFound(t *testing.T) {
	source := &fakeSource{
		points: map[string][]types.PricePoint{"2025-03-10": {}},
		rates:  map[string]float64{"2025-03-10": 25.0},
	}
	calc := NewCalculator(source)

	_, err := calc.DaySet(context.Background(), testDate, types.Evaluation{}, Params{VAT: 1}, false)
	if !errors.Is(err, types.ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound for empty day, got %v", err)
	}
}

func TestDaySetMissingRateIsDistinctError(t *testing.T) {
	source := &fakeSource{
		points: map[string][]types.PricePoint{"2025-03-10": flatDay(1.0)},
		rates:  map[string]float64{},
	}
	calc := NewCalculator(source)

	_, err := calc.DaySet(context.Background(), testDate, types.Evaluation{}, Params{VAT: 1}, false)
	if !errors.Is(err, types.ErrRateUnavailable) {
		t.Errorf("expected ErrRateUnavailable, got %v", err)
	}
	if errors.Is(err, types.ErrPriceNotFound) {
		t.Error("rate failure must not be reported as missing price data")
	}
}

func TestDaySetAcceptsPartialDay(t *testing.T) {
	// Daylight-saving days can be short; the builder takes what it gets.
	source := &fakeSource{
		points: map[string][]types.PricePoint{"2025-03-10": hourlyDay(1, 2, 3)},
		rates:  map[string]float64{"2025-03-10": 1000.0},
	}
	calc := NewCalculator(source)

	set, err := calc.DaySet(context.Background(), testDate, types.Evaluation{}, Params{VAT: 1}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Total.Len() != 3 {
		t.Errorf("expected 3 slots, got %d", set.Total.Len())
	}
}

func ExamplePriceSeries_MarshalJSON() {
	set := Derive(testDate, hourlyDay(3, 1, 2), 1000.0, Params{VAT: 1.0}, types.Evaluation{})
	data, _ := set.TotalSorted.MarshalJSON()
	fmt.Println(string(data))
	// Output: {"hours":{"1:00":1,"2:00":2,"0:00":3},"now":null}
}
