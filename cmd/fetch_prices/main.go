// fetch_prices pulls one day of market data straight from the upstreams and
// prints the derived price series as JSON. Handy for checking what the
// service would serve without running it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/rosti-cz/pricepower-go/cnb"
	"github.com/rosti-cz/pricepower-go/ote"
	"github.com/rosti-cz/pricepower-go/pricing"
	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

func main() {
	dateStr := flag.String("date", "", "date to fetch in YYYY-MM-DD format, default today")
	currency := flag.String("currency", "EUR", "quote currency of the market")
	flag.Parse()

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339Nano,
		}),
	))

	date := time.Now()
	if *dateStr != "" {
		parsed, err := time.Parse(slots.DateLayout, *dateStr)
		if err != nil {
			slog.Error("invalid date", slog.String("date", *dateStr), slog.Any("error", err))
			os.Exit(1)
		}
		date = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	points, err := ote.New().DayPrices(ctx, date)
	if err != nil {
		slog.Error("fetching day prices", slog.Any("error", err))
		os.Exit(1)
	}

	rate, err := cnb.New(*currency).Rate(ctx, date)
	if err != nil {
		slog.Error("fetching exchange rate", slog.Any("error", err))
		os.Exit(1)
	}

	now := time.Now()
	eval := types.Evaluation{Slot: slots.FromTime(now), IsToday: slots.SameDate(date, now)}
	set := pricing.Derive(date, points, rate, pricing.Params{VAT: 1, LowTariff: map[slots.Slot]bool{}}, eval)

	out := struct {
		Date  string            `json:"date"`
		Rate  float64           `json:"rate"`
		Spot  types.PriceSeries `json:"spot"`
		Total types.PriceSeries `json:"total"`
	}{
		Date:  date.Format(slots.DateLayout),
		Rate:  rate,
		Spot:  set.Spot,
		Total: set.Total,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
