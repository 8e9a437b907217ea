// Package ote fetches day-ahead electricity prices from the Czech market
// operator (OTE). A day is either 24 hourly or 96 quarter-hourly points,
// both priced in EUR/MWh.
package ote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

const (
	hourlyPoints  = 24
	quarterPoints = 96
	// An autumn DST day reports 100 quarters; the duplicated 2:00-3:00
	// block sits at positions [8:12).
	dstLongDayPoints = 100
)

type OTE struct {
	baseURL string
	client  *http.Client
}

func New() OTE {
	return OTE{baseURL: API_URL, client: &http.Client{}}
}

// DayPrices returns the published market points for a date in slot order.
// A date without published data fails with types.ErrPriceNotFound.
func (o OTE) DayPrices(ctx context.Context, date time.Time) ([]types.PricePoint, error) {
	url := fmt.Sprintf("%s?report_date=%s", o.baseURL, date.Format(slots.DateLayout))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.ErrPriceNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var chart chartData
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return pointsFromChart(chart)
}

// pointsFromChart keys the raw chart points. Hourly days key by the 1-based
// x index; quarter-hourly days key by sequence position since x restarts
// within each hour. Short (DST spring) days are keyed as far as they go.
func pointsFromChart(chart chartData) ([]types.PricePoint, error) {
	if len(chart.Data.DataLine) < 2 {
		return nil, types.ErrPriceNotFound
	}

	raw := chart.Data.DataLine[1].Point
	if len(raw) == 0 {
		return nil, types.ErrPriceNotFound
	}

	if len(raw) == hourlyPoints {
		points := make([]types.PricePoint, 0, len(raw))
		for _, p := range raw {
			index, err := p.X.Int64()
			if err != nil {
				return nil, fmt.Errorf("invalid point index %q: %w", p.X, err)
			}
			if index < 1 || index > hourlyPoints {
				return nil, fmt.Errorf("point index out of range: %d", index)
			}
			points = append(points, types.PricePoint{
				Slot:  slots.New(int(index)-1, 0),
				Value: p.Y,
			})
		}
		return points, nil
	}

	if len(raw) == dstLongDayPoints {
		raw = append(raw[0:8:8], raw[12:]...)
	}

	points := make([]types.PricePoint, 0, len(raw))
	hour, quarter := 0, 0
	for _, p := range raw {
		if hour > 23 {
			break
		}
		points = append(points, types.PricePoint{
			Slot:  slots.New(hour, quarter*15),
			Value: p.Y,
		})
		quarter++
		if quarter == 4 {
			quarter = 0
			hour++
		}
	}

	return points, nil
}
