package slots

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Slot
		wantErr  bool
	}{
		{name: "bare hour", input: "7", expected: "7:00"},
		{name: "bare two-digit hour", input: "13", expected: "13:00"},
		{name: "full quarter", input: "7:45", expected: "7:45"},
		{name: "minute floored to quarter", input: "7:38", expected: "7:30"},
		{name: "minute floored to zero", input: "0:07", expected: "0:00"},
		{name: "whitespace trimmed", input: " 9:15 ", expected: "9:15"},
		{name: "hour out of range", input: "24", wantErr: true},
		{name: "negative hour", input: "-1:00", wantErr: true},
		{name: "minute out of range", input: "7:60", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %q", tt.input, slot)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if slot != tt.expected {
				t.Errorf("Parse(%q) expected %q, got %q", tt.input, tt.expected, slot)
			}
		})
	}
}

func TestFromTime(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 52, 10, 0, time.UTC)
	if slot := FromTime(at); slot != "14:45" {
		t.Errorf("FromTime expected 14:45, got %q", slot)
	}
}

func TestCompareIsChronological(t *testing.T) {
	if Slot("9:00").Compare("10:00") >= 0 {
		t.Error("9:00 should sort before 10:00")
	}
	if Slot("9:15").Compare("9:00") <= 0 {
		t.Error("9:15 should sort after 9:00")
	}
	if Slot("9:30").Compare("9:30") != 0 {
		t.Error("equal slots should compare to zero")
	}
}

func TestSort(t *testing.T) {
	slts := []Slot{"10:00", "2:15", "2:00", "23:45", "0:00"}
	Sort(slts)
	expected := []Slot{"0:00", "2:00", "2:15", "10:00", "23:45"}
	for i, s := range expected {
		if slts[i] != s {
			t.Fatalf("expected %v, got %v", expected, slts)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		date     string
		expected int
	}{
		{"2025-01-15", 31},
		{"2025-02-01", 28},
		{"2024-02-29", 29},
		{"2025-04-30", 30},
	}

	for _, tt := range tests {
		at, err := time.Parse(DateLayout, tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if days := DaysInMonth(at); days != tt.expected {
			t.Errorf("DaysInMonth(%s) expected %d, got %d", tt.date, tt.expected, days)
		}
	}
}

func TestSameDate(t *testing.T) {
	a := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !SameDate(a, b) {
		t.Error("expected same date")
	}
	if SameDate(a, c) {
		t.Error("expected different dates")
	}
}
