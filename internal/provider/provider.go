// Package provider implements external rate providers for fetching currency exchange rates.
package provider

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrSourceUnavailable is returned when a rate source exhausted its fallback chain.
var ErrSourceUnavailable = errors.New("rate source unavailable")

// Rate is a successfully fetched exchange rate. Absence of a rate is always
// reported as an error, never as a zero Value.
type Rate struct {
	Value     float64
	Source    string
	FetchedAt time.Time
}

// RatesProvider defines an interface for fetching exchange rates from external sources.
type RatesProvider interface {
	Name() string
	GetRate(ctx context.Context, base, quote string) (Rate, error)
}

// DailyClose is one daily closing price. Close is NaN when the upstream
// reported no value for that day.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// HistoryProvider returns daily closing prices for a currency pair over a
// range such as "1mo" or "1y", oldest first.
type HistoryProvider interface {
	DailyCloses(ctx context.Context, base, quote, period string) ([]DailyClose, error)
}

func validRate(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
