package pricing

import "github.com/rosti-cz/pricepower-go/slots"

// TariffSlots expands low-tariff hours into the slot set used by Derive.
// All four quarters of each hour are included, so the set matches both
// hourly ("7:00") and quarter-hourly ("7:15") series keys.
func TariffSlots(hours []int) map[slots.Slot]bool {
	set := make(map[slots.Slot]bool, len(hours)*4)
	for _, hour := range hours {
		if hour < 0 || hour > 23 {
			continue
		}
		for minute := 0; minute < 60; minute += 15 {
			set[slots.New(hour, minute)] = true
		}
	}
	return set
}
