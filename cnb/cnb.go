// Package cnb fetches the daily exchange-rate listing published by the
// Czech National Bank and extracts the CZK rate for one currency.
//
// The listing is pipe-delimited text with decimal commas:
//
//	zem√©|m√©na|mno≈æstv√≠|k√≥d|kurz
//	EMU|euro|1|EUR|24,725
package cnb

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rosti-cz/pricepower-go/convert"
	"github.com/rosti-cz/pricepower-go/types"
)

const API_URL = "https://www.cnb.cz/cs/financni-trhy/devizovy-trh/kurzy-devizoveho-trhu/kurzy-devizoveho-trhu/denni_kurz.txt"

const (
	columnAmount = 2
	columnCode   = 3
	columnRate   = 4
)

type CNB struct {
	baseURL  string
	currency string
	client   *http.Client
}

func New(currency string) CNB {
	return CNB{baseURL: API_URL, currency: currency, client: &http.Client{}}
}

// Rate returns the CZK value of one unit of the configured currency on the
// given date. A listing without a matching row fails with
// types.ErrRateUnavailable.
func (c CNB) Rate(ctx context.Context, date time.Time) (float64, error) {
	url := fmt.Sprintf("%s?date=%02d.%02d.%d", c.baseURL, date.Day(), int(date.Month()), date.Year())

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return rateFromListing(bufio.NewScanner(resp.Body), c.currency)
}

func rateFromListing(scanner *bufio.Scanner, currency string) (float64, error) {
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "|") {
			continue
		}

		columns := strings.Split(line, "|")
		if len(columns) <= columnRate || columns[columnCode] != currency {
			continue
		}

		rate, err := convert.CzechFloat(columns[columnRate])
		if err != nil {
			return 0, fmt.Errorf("invalid rate %q for %s: %w", columns[columnRate], currency, err)
		}
		amount, err := strconv.Atoi(strings.TrimSpace(columns[columnAmount]))
		if err != nil || amount <= 0 {
			return 0, fmt.Errorf("invalid amount %q for %s", columns[columnAmount], currency)
		}

		return rate / float64(amount), nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read listing: %w", err)
	}

	return 0, fmt.Errorf("%s: %w", currency, types.ErrRateUnavailable)
}
