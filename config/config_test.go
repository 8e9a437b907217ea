package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const testConfig = `
api:
  address: "127.0.0.1"
  port: 8080
database:
  path: "/tmp/pricepower.db"
prices:
  kwh_fees_low: 1.5
  vat: 1.21
  low_tariff_hours: "0,1,2,3"
battery:
  kwh_price: 3.0
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	t.Run("explicit values", func(t *testing.T) {
		if c.Api.Port != 8080 {
			t.Errorf("expected port 8080, got %d", c.Api.Port)
		}
		if c.Prices.GetKwhFeesLow() != 1.5 {
			t.Errorf("expected kwh_fees_low 1.5, got %f", c.Prices.GetKwhFeesLow())
		}
		if c.Battery.GetKwhPrice() != 3.0 {
			t.Errorf("expected battery kwh_price 3.0, got %f", c.Battery.GetKwhPrice())
		}
		if !reflect.DeepEqual(c.Prices.GetLowTariffHours(), []int{0, 1, 2, 3}) {
			t.Errorf("expected low tariff hours 0-3, got %v", c.Prices.GetLowTariffHours())
		}
	})

	t.Run("defaults", func(t *testing.T) {
		if c.Prices.GetKwhFeesHigh() != 1.86567 {
			t.Errorf("expected default kwh_fees_high, got %f", c.Prices.GetKwhFeesHigh())
		}
		if c.Prices.GetCurrency() != "EUR" {
			t.Errorf("expected default currency EUR, got %s", c.Prices.GetCurrency())
		}
		if c.Ranking.GetNumCheapestHours() != 8 {
			t.Errorf("expected default 8 cheapest hours, got %d", c.Ranking.GetNumCheapestHours())
		}
		if c.Ranking.GetAverageHoursThreshold() != 1.25 {
			t.Errorf("expected default threshold 1.25, got %f", c.Ranking.GetAverageHoursThreshold())
		}
		if c.Database.GetDataRetentionDays() != 90 {
			t.Errorf("expected default retention 90 days, got %d", c.Database.GetDataRetentionDays())
		}
		if c.Mqtt.Enabled() {
			t.Error("mqtt must stay disabled without a host")
		}
	})
}

func TestParseHourList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{name: "plain", input: "0,1,2", expected: []int{0, 1, 2}},
		{name: "spaces", input: " 5 , 6 ", expected: []int{5, 6}},
		{name: "invalid entries dropped", input: "1,x,24,-1,23", expected: []int{1, 23}},
		{name: "empty", input: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHourList(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseHourList(%q) expected %v, got %v", tt.input, tt.expected, got)
			}
		})
	}
}
