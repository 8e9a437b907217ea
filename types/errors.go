package types

import "errors"

// ErrPriceNotFound means the market has no published data for the requested
// date. It is a hard failure for the primary date but tolerated for the
// next-day lookahead.
var ErrPriceNotFound = errors.New("no market price data for date")

// ErrRateUnavailable means the exchange-rate source has no EUR row for the
// requested date. Deliberately distinct from ErrPriceNotFound; callers treat
// the two differently.
var ErrRateUnavailable = errors.New("no conversion rate for date")
