package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rosti-cz/pricepower-go/database"
	"github.com/rosti-cz/pricepower-go/types"
)

// NewPrefetchTask warms the market cache with today's and tomorrow's data so
// requests are served without an upstream round trip. Tomorrow's prices are
// usually not published before the early afternoon; a miss is expected and
// only logged.
func NewPrefetchTask(logger *slog.Logger, db *database.Database, source types.MarketSource) func() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if needImmediatePrefetch(ctx, db) {
		logger.Info("need an immediate prefetch of market data")
		runPrefetchTask(logger, source)
	} else {
		logger.Debug("no need for an immediate prefetch")
	}

	return func() { runPrefetchTask(logger, source) }
}

func runPrefetchTask(logger *slog.Logger, source types.MarketSource) {
	logger.Debug("running prefetch task...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	fetched := 0
	for _, date := range []time.Time{now, now.AddDate(0, 0, 1)} {
		day := date.Format("2006-01-02")

		points, err := source.DayPrices(ctx, date, false)
		if err != nil {
			if errors.Is(err, types.ErrPriceNotFound) {
				logger.Debug("no market data published yet", slog.String("date", day))
			} else {
				logger.Error("prefetch of day prices failed", slog.String("date", day), slog.Any("error", err))
			}
			continue
		}
		fetched += len(points)

		if _, err := source.Rate(ctx, date, false); err != nil {
			if errors.Is(err, types.ErrRateUnavailable) {
				logger.Debug("no exchange rate published yet", slog.String("date", day))
			} else {
				logger.Error("prefetch of exchange rate failed", slog.String("date", day), slog.Any("error", err))
			}
		}
	}

	logger.Info("prefetch task done", slog.Int("noOfSlotsFetched", fetched))
}

func needImmediatePrefetch(ctx context.Context, db *database.Database) bool {
	points, err := db.GetDayPrices(ctx, time.Now())
	return err != nil || len(points) == 0
}
