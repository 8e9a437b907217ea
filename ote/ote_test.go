package ote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rosti-cz/pricepower-go/types"
)

func chartJSON(t *testing.T, prices []float64) string {
	t.Helper()
	var points strings.Builder
	for i, p := range prices {
		if i > 0 {
			points.WriteByte(',')
		}
		fmt.Fprintf(&points, `{"x":"%d","y":%g}`, i+1, p)
	}
	return fmt.Sprintf(`{"data":{"dataLine":[
		{"title":"Volume","point":[]},
		{"title":"Price","point":[%s]}]}}`, points.String())
}

func decodeChart(t *testing.T, body string) chartData {
	t.Helper()
	var chart chartData
	if err := json.Unmarshal([]byte(body), &chart); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return chart
}

func TestPointsFromChartHourly(t *testing.T) {
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = float64(i) + 0.5
	}
	chart := decodeChart(t, chartJSON(t, prices))

	points, err := pointsFromChart(chart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(points))
	}
	if points[0].Slot != "0:00" || points[23].Slot != "23:00" {
		t.Errorf("hourly keys wrong: first %s, last %s", points[0].Slot, points[23].Slot)
	}
	if points[5].Value != 5.5 {
		t.Errorf("expected 5.5 at 5:00, got %f", points[5].Value)
	}
}

func TestPointsFromChartQuarterHourly(t *testing.T) {
	prices := make([]float64, 96)
	for i := range prices {
		prices[i] = float64(i)
	}
	chart := decodeChart(t, chartJSON(t, prices))

	points, err := pointsFromChart(chart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 96 {
		t.Fatalf("expected 96 points, got %d", len(points))
	}
	if points[0].Slot != "0:00" || points[1].Slot != "0:15" || points[95].Slot != "23:45" {
		t.Errorf("quarter keys wrong: %s, %s, %s", points[0].Slot, points[1].Slot, points[95].Slot)
	}
}

func TestPointsFromChartDstLongDay(t *testing.T) {
	// Autumn DST day: 100 quarters, the extra 2:00-3:00 block at [8:12)
	// gets dropped.
	prices := make([]float64, 100)
	for i := range prices {
		prices[i] = float64(i)
	}
	chart := decodeChart(t, chartJSON(t, prices))

	points, err := pointsFromChart(chart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 96 {
		t.Fatalf("expected 96 points after DST trim, got %d", len(points))
	}
	// Position 8 now carries the value that originally sat at index 12.
	if points[8].Slot != "2:00" || points[8].Value != 12 {
		t.Errorf("DST trim wrong: slot %s value %f", points[8].Slot, points[8].Value)
	}
}

func TestPointsFromChartShortDay(t *testing.T) {
	// Spring DST day with 92 quarters is returned as-is.
	prices := make([]float64, 92)
	chart := decodeChart(t, chartJSON(t, prices))

	points, err := pointsFromChart(chart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 92 {
		t.Errorf("expected 92 points, got %d", len(points))
	}
}

func TestPointsFromChartEmpty(t *testing.T) {
	chart := decodeChart(t, `{"data":{"dataLine":[]}}`)
	if _, err := pointsFromChart(chart); !errors.Is(err, types.ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound, got %v", err)
	}

	chart = decodeChart(t, chartJSON(t, nil))
	if _, err := pointsFromChart(chart); !errors.Is(err, types.ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound for empty price line, got %v", err)
	}
}

func TestDayPrices(t *testing.T) {
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = 100.0
	}
	body := chartJSON(t, prices)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("report_date") != "2025-03-10" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	o := New()
	o.baseURL = server.URL

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	points, err := o.DayPrices(context.Background(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 24 {
		t.Errorf("expected 24 points, got %d", len(points))
	}

	_, err = o.DayPrices(context.Background(), date.AddDate(0, 0, 1))
	if !errors.Is(err, types.ErrPriceNotFound) {
		t.Errorf("expected ErrPriceNotFound for 404, got %v", err)
	}
}
