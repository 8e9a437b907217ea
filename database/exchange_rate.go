package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
)

// SaveExchangeRate caches a conversion rate for one date and currency.
func (d *Database) SaveExchangeRate(ctx context.Context, date time.Time, currency string, rate float64) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO exchange_rate (date, currency, rate) VALUES (?, ?, ?)
		ON CONFLICT(date, currency) DO UPDATE SET rate = excluded.rate`,
		date.Format(slots.DateLayout), currency, rate)
	if err != nil {
		return fmt.Errorf("saving exchange rate: %w", err)
	}
	return nil
}

// GetExchangeRate returns the cached rate, with ok reporting a cache hit.
func (d *Database) GetExchangeRate(ctx context.Context, date time.Time, currency string) (float64, bool, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT rate FROM exchange_rate WHERE date = ? AND currency = ?`,
		date.Format(slots.DateLayout), currency)

	var rate float64
	if err := row.Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("fetching cached exchange rate: %w", err)
	}
	return rate, true, nil
}

func (d *Database) PurgeExchangeRates(ctx context.Context, retentionDays int) error {
	d.logger.Debug("purging exchange_rate")
	before := time.Now().AddDate(0, 0, -retentionDays).Format(slots.DateLayout)
	_, err := d.write.ExecContext(ctx, `DELETE FROM exchange_rate WHERE date < ?`, before)
	if err != nil {
		return fmt.Errorf("purging exchange_rate: %w", err)
	}
	return nil
}
