package pricing

import (
	"testing"

	"github.com/rosti-cz/pricepower-go/slots"
)

func TestTariffSlots(t *testing.T) {
	set := TariffSlots([]int{0, 7})

	if len(set) != 8 {
		t.Fatalf("expected 8 slots for two hours, got %d", len(set))
	}
	for _, slot := range []slots.Slot{"0:00", "0:15", "0:30", "0:45", "7:00", "7:15", "7:30", "7:45"} {
		if !set[slot] {
			t.Errorf("slot %s missing from tariff set", slot)
		}
	}
	if set["8:00"] {
		t.Error("8:00 must not be in the tariff set")
	}
}

func TestTariffSlotsIgnoresInvalidHours(t *testing.T) {
	set := TariffSlots([]int{-1, 24, 5})
	if len(set) != 4 {
		t.Errorf("expected only hour 5 expanded, got %d slots", len(set))
	}
}
