package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

const (
	// Number of cheapest slots that seed the charging window.
	chargingSeedSlots = 4
	// The expensive reference window is the maximum over this many of the
	// cheapest slots.
	expensiveWindowSlots = 20
	// Slots priced within this factor of the dearest seed slot still count
	// as charging slots.
	chargingGraceFactor = 1.10
	// Late-evening hours dropped from charging when tomorrow morning is
	// cheaper.
	lateHoursFrom = 20
)

// PlanBattery decides whether storage arbitrage pays off today and which
// slots to charge or discharge in. tomorrow is best effort: pass nil when
// next-day prices are not published yet and the late-evening correction is
// skipped. batteryKwhPrice is the per-kWh spread that makes a discharge
// worthwhile (wear plus round-trip losses).
func PlanBattery(today types.DerivedPriceSet, tomorrow *types.DerivedPriceSet, batteryKwhPrice float64, eval types.Evaluation) types.BatteryPlan {
	sorted := today.TotalSorted.Prices

	charging := make([]slots.Slot, 0, chargingSeedSlots)
	maxCheapest := 0.0
	for i := 0; i < len(sorted) && i < chargingSeedSlots; i++ {
		charging = append(charging, sorted[i].Slot)
		if sorted[i].Value > maxCheapest {
			maxCheapest = sorted[i].Value
		}
	}

	maxExpensive := 0.0
	for i := 0; i < len(sorted) && i < expensiveWindowSlots; i++ {
		if sorted[i].Value > maxExpensive {
			maxExpensive = sorted[i].Value
		}
	}

	discharging := make([]slots.Slot, 0)
	for _, sp := range sorted {
		if sp.Value > maxCheapest+batteryKwhPrice {
			discharging = append(discharging, sp.Slot)
		}
	}

	// Slots just above the dearest seed slot are still worth charging in.
	for i := chargingSeedSlots; i < len(sorted); i++ {
		if sorted[i].Value <= maxCheapest*chargingGraceFactor {
			charging = append(charging, sorted[i].Slot)
		}
	}

	if tomorrow != nil && eveningDearerThanMorning(today, *tomorrow) {
		charging = dropLateHours(charging)
	}

	isViable := len(discharging) > 0

	slots.Sort(charging)
	slots.Sort(discharging)

	return types.BatteryPlan{
		Diff:              maxExpensive - maxCheapest,
		IsViable:          isViable,
		ChargingHours:     charging,
		IsChargingHour:    isViable && containsSlot(charging, eval.Slot),
		DischargingHours:  discharging,
		IsDischargingHour: isViable && containsSlot(discharging, eval.Slot),
		TotalPrice:        today.TotalSorted,
	}
}

// eveningDearerThanMorning compares the mean of today's four most expensive
// slots against the mean of tomorrow's four cheapest. When tonight is dearer
// it makes no sense to charge late; waiting for the early hours is cheaper.
func eveningDearerThanMorning(today, tomorrow types.DerivedPriceSet) bool {
	lateToday := sortedWindowAverage(today.TotalSorted.Prices, lateHoursFrom, lateHoursFrom+4)
	earlyTomorrow := sortedWindowAverage(tomorrow.TotalSorted.Prices, 0, 4)
	return lateToday > earlyTomorrow
}

func sortedWindowAverage(sorted []types.SlotPrice, from, to int) float64 {
	sum := 0.0
	for i := from; i < to && i < len(sorted); i++ {
		sum += sorted[i].Value
	}
	return sum / float64(to-from)
}

func dropLateHours(charging []slots.Slot) []slots.Slot {
	kept := charging[:0]
	for _, slot := range charging {
		if slot.Hour() < lateHoursFrom {
			kept = append(kept, slot)
		}
	}
	return kept
}

// BatteryPlan derives today's plan from the market source. A missing
// tomorrow (types.ErrPriceNotFound) only disables the late-evening
// correction; any failure for today propagates.
func (c *Calculator) BatteryPlan(ctx context.Context, now time.Time, p Params, batteryKwhPrice float64, force bool) (types.BatteryPlan, error) {
	eval := types.Evaluation{Slot: slots.FromTime(now), IsToday: true}

	today, err := c.DaySet(ctx, now, eval, p, force)
	if err != nil {
		return types.BatteryPlan{}, err
	}

	var lookahead *types.DerivedPriceSet
	tomorrow, err := c.DaySet(ctx, now.AddDate(0, 0, 1), types.Evaluation{}, p, force)
	if err == nil {
		lookahead = &tomorrow
	} else if !errors.Is(err, types.ErrPriceNotFound) {
		return types.BatteryPlan{}, fmt.Errorf("fetching lookahead prices: %w", err)
	}

	return PlanBattery(today, lookahead, batteryKwhPrice, eval), nil
}
