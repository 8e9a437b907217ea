package pricing

import (
	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
	"github.com/rosti-cz/pricepower-go/types/maybe"
)

// RankParams controls the classification of a day's slots.
type RankParams struct {
	NumCheapest      int
	NumMostExpensive int
	AverageWindow    int     // number of cheapest slots averaged for the threshold base
	AverageThreshold float64 // slot is "cheap" while value < average * threshold
}

// Rank classifies the slots of a sorted total series into the four selection
// sets. Membership of the evaluation slot is only reported when the set's
// date is today; otherwise the flag stays absent.
func Rank(set types.DerivedPriceSet, p RankParams, eval types.Evaluation) types.Ranking {
	sorted := set.TotalSorted.Prices

	cheapest := make([]slots.Slot, 0, p.NumCheapest)
	for i := 0; i < len(sorted) && i < p.NumCheapest; i++ {
		cheapest = append(cheapest, sorted[i].Slot)
	}

	mostExpensive := make([]slots.Slot, 0, p.NumMostExpensive)
	for i := len(sorted) - 1; i >= 0 && len(mostExpensive) < p.NumMostExpensive; i-- {
		mostExpensive = append(mostExpensive, sorted[i].Slot)
	}

	cheapestByAverage := make([]slots.Slot, 0)
	if p.AverageWindow > 0 {
		sum := 0.0
		for i := 0; i < len(sorted) && i < p.AverageWindow; i++ {
			sum += sorted[i].Value
		}
		average := sum / float64(p.AverageWindow)
		for _, sp := range sorted {
			if sp.Value < average*p.AverageThreshold {
				cheapestByAverage = append(cheapestByAverage, sp.Slot)
			}
		}
	}

	// The complement set; its order is incidental and not part of the
	// contract.
	cheap := make(map[slots.Slot]bool, len(cheapestByAverage))
	for _, slot := range cheapestByAverage {
		cheap[slot] = true
	}
	mostExpensiveByAverage := make([]slots.Slot, 0, len(sorted)-len(cheapestByAverage))
	for _, sp := range sorted {
		if !cheap[sp.Slot] {
			mostExpensiveByAverage = append(mostExpensiveByAverage, sp.Slot)
		}
	}

	return types.Ranking{
		Cheapest:               rankedHours(cheapest, eval),
		MostExpensive:          rankedHours(mostExpensive, eval),
		CheapestByAverage:      rankedHours(cheapestByAverage, eval),
		MostExpensiveByAverage: rankedHours(mostExpensiveByAverage, eval),
	}
}

func rankedHours(hours []slots.Slot, eval types.Evaluation) types.RankedHours {
	member := maybe.None[bool]()
	if eval.IsToday {
		member = maybe.Some(containsSlot(hours, eval.Slot))
	}
	return types.RankedHours{Hours: hours, IsMember: member}
}

func containsSlot(hours []slots.Slot, slot slots.Slot) bool {
	for _, h := range hours {
		if h == slot {
			return true
		}
	}
	return false
}
