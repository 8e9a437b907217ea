package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rosti-cz/pricepower-go/slots"
	"github.com/rosti-cz/pricepower-go/types"
)

// SaveDayPrices stores one day's market points, replacing whatever was
// cached for the date. Slot order is preserved through the pos column.
func (d *Database) SaveDayPrices(ctx context.Context, date time.Time, points []types.PricePoint) error {
	day := date.Format(slots.DateLayout)

	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving day prices for %s: %w", day, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM spot_price WHERE date = ?`, day); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing cached prices for %s: %w", day, err)
	}

	for pos, point := range points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO spot_price (date, pos, slot, price) VALUES (?, ?, ?, ?)`,
			day, pos, string(point.Slot), point.Value)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("saving price for %s %s: %w", day, point.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving day prices for %s: %w", day, err)
	}
	return nil
}

// GetDayPrices returns the cached points for a date in slot order, or an
// empty slice on a cache miss.
func (d *Database) GetDayPrices(ctx context.Context, date time.Time) ([]types.PricePoint, error) {
	day := date.Format(slots.DateLayout)

	rows, err := d.read.QueryContext(ctx, `
		SELECT slot, price FROM spot_price WHERE date = ? ORDER BY pos ASC`, day)
	if err != nil {
		return nil, fmt.Errorf("fetching cached prices for %s: %w", day, err)
	}
	defer rows.Close()

	var points []types.PricePoint
	for rows.Next() {
		var slot string
		var price float64
		if err := rows.Scan(&slot, &price); err != nil {
			return nil, fmt.Errorf("scanning cached price row: %w", err)
		}
		points = append(points, types.PricePoint{Slot: slots.Slot(slot), Value: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cached price rows: %w", err)
	}

	return points, nil
}

func (d *Database) PurgeSpotPrices(ctx context.Context, retentionDays int) error {
	d.logger.Debug("purging spot_price")
	before := time.Now().AddDate(0, 0, -retentionDays).Format(slots.DateLayout)
	_, err := d.write.ExecContext(ctx, `DELETE FROM spot_price WHERE date < ?`, before)
	if err != nil {
		return fmt.Errorf("purging spot_price: %w", err)
	}
	return nil
}
