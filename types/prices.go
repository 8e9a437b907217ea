package types

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types/maybe"
)

// PricePoint is one raw market value for a slot, as delivered by the price
// source (EUR/MWh before any derivation).
type PricePoint struct {
	Slot  slots.Slot
	Value float64
}

// SlotPrice is one derived per-slot price in CZK/kWh.
type SlotPrice struct {
	Slot  slots.Slot
	Value float64
}

// PriceSeries is an insertion-ordered slot to price mapping for one date.
// Now is only populated when the series' date is today and the evaluation
// slot exists in the series.
type PriceSeries struct {
	Prices []SlotPrice
	Now    maybe.Maybe[float64]
}

// Value returns the price for a slot, if present.
func (ps PriceSeries) Value(slot slots.Slot) (float64, bool) {
	for _, sp := range ps.Prices {
		if sp.Slot == slot {
			return sp.Value, true
		}
	}
	return 0, false
}

// Keys returns the slots in series order.
func (ps PriceSeries) Keys() []slots.Slot {
	keys := make([]slots.Slot, len(ps.Prices))
	for i, sp := range ps.Prices {
		keys[i] = sp.Slot
	}
	return keys
}

func (ps PriceSeries) Len() int {
	return len(ps.Prices)
}

// MarshalJSON keeps the slot order of the series, which encoding/json would
// lose with a plain map. The sorted-total view relies on this.
func (ps PriceSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"hours":{`)
	for i, sp := range ps.Prices {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(sp.Slot))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(sp.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString(`},"now":`)
	now, err := json.Marshal(ps.Now)
	if err != nil {
		return nil, err
	}
	buf.Write(now)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DerivedPriceSet bundles the derived views for one date: raw spot converted
// to CZK/kWh, the fee/VAT-loaded total, the sell-side price, and the total
// series stably sorted ascending by value.
type DerivedPriceSet struct {
	Date        time.Time
	Spot        PriceSeries
	Total       PriceSeries
	Sell        PriceSeries
	TotalSorted PriceSeries
}

// RankedHours is a selection of slots plus, when the underlying series
// describes today, whether the evaluation slot belongs to the selection.
type RankedHours struct {
	Hours    []slots.Slot
	IsMember maybe.Maybe[bool]
}

// Ranking holds the four classification sets derived from a sorted total
// series. MostExpensiveByAverage is a set complement and carries no
// guaranteed order.
type Ranking struct {
	Cheapest               RankedHours
	MostExpensive          RankedHours
	CheapestByAverage      RankedHours
	MostExpensiveByAverage RankedHours
}

// BatteryPlan is the charge/discharge recommendation for one day. The hour
// membership flags are plain booleans, not optionals: downstream automation
// consumes them directly and treats "not viable" as false.
type BatteryPlan struct {
	Diff              float64      `json:"diff"`
	IsViable          bool         `json:"is_viable"`
	ChargingHours     []slots.Slot `json:"charging_hours"`
	IsChargingHour    bool         `json:"is_charging_hour"`
	DischargingHours  []slots.Slot `json:"discharging_hours"`
	IsDischargingHour bool         `json:"is_discharging_hour"`
	TotalPrice        PriceSeries  `json:"total_price"`
}

// Evaluation pins the slot the caller is asking about and whether the
// requested date is the evaluation date. "Now" fields and membership flags
// stay absent unless IsToday holds.
type Evaluation struct {
	Slot    slots.Slot
	IsToday bool
}

// PriceProvider supplies raw day-ahead market points for a date. It fails
// with ErrPriceNotFound when the market has published nothing for the date.
type PriceProvider interface {
	DayPrices(ctx context.Context, date time.Time) ([]PricePoint, error)
}

// RateProvider supplies the EUR/CZK conversion rate for a date. It fails
// with ErrRateUnavailable when no EUR row exists for the date.
type RateProvider interface {
	Rate(ctx context.Context, date time.Time) (float64, error)
}

// MarketSource is the cached collaborator the core reads from. The force
// flag bypasses the cache and refetches from the upstream provider.
type MarketSource interface {
	DayPrices(ctx context.Context, date time.Time, force bool) ([]PricePoint, error)
	Rate(ctx context.Context, date time.Time, force bool) (float64, error)
}
