// Package pricing is the derivation core: it turns raw day-ahead market
// points and a conversion rate into fee/VAT-loaded price series, ranks the
// cheapest and most expensive slots, and plans battery charging for the day.
// Everything here is a pure computation over already-fetched data; fetching,
// caching and retries live in the market collaborator.
package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
	"github.com/rosti-cz/pricepower-go/types/maybe"
)

// Params are the fee and tax knobs applied when deriving per-slot prices.
// Fees are CZK/kWh, VAT is a multiplier (1.21 for 21 %).
type Params struct {
	KwhFeesLow  float64
	KwhFeesHigh float64
	SellFees    float64
	VAT         float64
	LowTariff   map[slots.Slot]bool
}

// Derive builds the four per-slot views for one date from raw market points
// (EUR/MWh) and a CZK/EUR rate. Points keep their source order, which is
// chronological for a complete day. The "now" fields are only populated when
// the evaluation says the date is today and the slot exists in the series.
func Derive(date time.Time, points []types.PricePoint, rate float64, p Params, eval types.Evaluation) types.DerivedPriceSet {
	spot := make([]types.SlotPrice, len(points))
	total := make([]types.SlotPrice, len(points))
	sell := make([]types.SlotPrice, len(points))

	for i, point := range points {
		fees := p.KwhFeesHigh
		if p.LowTariff[point.Slot] {
			fees = p.KwhFeesLow
		}

		converted := point.Value * rate / 1000
		spot[i] = types.SlotPrice{Slot: point.Slot, Value: converted}
		total[i] = types.SlotPrice{Slot: point.Slot, Value: (converted + fees) * p.VAT}
		sell[i] = types.SlotPrice{Slot: point.Slot, Value: converted - p.SellFees}
	}

	totalSorted := make([]types.SlotPrice, len(total))
	copy(totalSorted, total)
	sort.SliceStable(totalSorted, func(i, j int) bool {
		return totalSorted[i].Value < totalSorted[j].Value
	})

	set := types.DerivedPriceSet{
		Date:        slots.Midnight(date),
		Spot:        types.PriceSeries{Prices: spot, Now: currentValue(spot, eval)},
		Total:       types.PriceSeries{Prices: total, Now: currentValue(total, eval)},
		Sell:        types.PriceSeries{Prices: sell, Now: currentValue(sell, eval)},
		TotalSorted: types.PriceSeries{Prices: totalSorted, Now: currentValue(total, eval)},
	}
	return set
}

func currentValue(prices []types.SlotPrice, eval types.Evaluation) maybe.Maybe[float64] {
	if !eval.IsToday {
		return maybe.None[float64]()
	}
	for _, sp := range prices {
		if sp.Slot == eval.Slot {
			return maybe.Some(sp.Value)
		}
	}
	return maybe.None[float64]()
}

// Calculator wires the pure derivations to a market source.
type Calculator struct {
	source types.MarketSource
}

func NewCalculator(source types.MarketSource) *Calculator {
	return &Calculator{source: source}
}

// DaySet fetches the market points and the conversion rate for a date and
// derives the price set. types.ErrPriceNotFound and types.ErrRateUnavailable
// pass through untouched so callers can tell the two failures apart.
func (c *Calculator) DaySet(ctx context.Context, date time.Time, eval types.Evaluation, p Params, force bool) (types.DerivedPriceSet, error) {
	points, err := c.source.DayPrices(ctx, date, force)
	if err != nil {
		return types.DerivedPriceSet{}, fmt.Errorf("fetching day prices for %s: %w", date.Format(slots.DateLayout), err)
	}
	if len(points) == 0 {
		return types.DerivedPriceSet{}, fmt.Errorf("fetching day prices for %s: %w", date.Format(slots.DateLayout), types.ErrPriceNotFound)
	}

	rate, err := c.source.Rate(ctx, date, force)
	if err != nil {
		return types.DerivedPriceSet{}, fmt.Errorf("fetching conversion rate for %s: %w", date.Format(slots.DateLayout), err)
	}

	return Derive(date, points, rate, p, eval), nil
}
