// Package signal derives a buy/wait/neutral advice from the deviation of the
// latest close from its short exponential moving average.
package signal

import (
	"context"
	"math"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"go.uber.org/zap"

	"smartrate/internal/provider"
)

// Kind is the advice.
type Kind string

// Signal kinds.
const (
	Buy         Kind = "BUY"
	Wait        Kind = "WAIT"
	Neutral     Kind = "NEUTRAL"
	Unavailable Kind = "UNAVAILABLE"
)

// Confidence labels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceNone   = "none"
)

// Deviation band around the EMA inside which the signal is neutral.
const band = 0.005

// Signal is the advice together with the inputs it was derived from.
type Signal struct {
	Kind       Kind
	Confidence string
	Close      float64
	EMA        float64
}

// Evaluate maps a (close, ema) pair onto a signal. It is pure: the same pair
// always yields the same signal.
func Evaluate(closePrice, ema float64) Signal {
	if !usable(closePrice) || !usable(ema) {
		return unavailable()
	}
	s := Signal{Kind: Neutral, Confidence: ConfidenceMedium, Close: closePrice, EMA: ema}
	switch {
	case closePrice < ema*(1-band):
		s.Kind, s.Confidence = Buy, ConfidenceHigh
	case closePrice > ema*(1+band):
		s.Kind, s.Confidence = Wait, ConfidenceHigh
	}
	return s
}

func unavailable() Signal {
	return Signal{Kind: Unavailable, Confidence: ConfidenceNone}
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LastEMA returns the final value of the period-EMA over closes. NaN closes
// are skipped.
func LastEMA(closes []float64, period int) (float64, bool) {
	clean := make([]float64, 0, len(closes))
	for _, c := range closes {
		if usable(c) {
			clean = append(clean, c)
		}
	}
	if period < 1 || len(clean) < period {
		return 0, false
	}
	ema := helper.ChanToSlice(trend.NewEmaWithPeriod[float64](period).Compute(helper.SliceToChan(clean)))
	if len(ema) == 0 {
		return 0, false
	}
	return ema[len(ema)-1], true
}

// Options configures an Advisor.
type Options struct {
	Period   int    // EMA period, 5 by default
	Lookback string // history range, "1mo" by default
	Timeout  time.Duration
}

// Advisor fetches recent daily closes and evaluates the signal.
type Advisor struct {
	history provider.HistoryProvider
	opts    Options
	logger  *zap.SugaredLogger
}

// NewAdvisor creates an Advisor reading closes from history.
func NewAdvisor(history provider.HistoryProvider, opts Options, logger *zap.SugaredLogger) *Advisor {
	if opts.Period < 1 {
		opts.Period = 5
	}
	if opts.Lookback == "" {
		opts.Lookback = "1mo"
	}
	return &Advisor{history: history, opts: opts, logger: logger}
}

// Advise returns UNAVAILABLE when the series cannot be obtained or is too
// short for the EMA; it never returns an error.
func (a *Advisor) Advise(ctx context.Context, base, target string) Signal {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	closes, err := a.history.DailyCloses(ctx, base, target, a.opts.Lookback)
	if err != nil {
		a.logger.Warnw("signal history unavailable", "base", base, "target", target, "error", err)
		return unavailable()
	}

	values := make([]float64, len(closes))
	for i, c := range closes {
		values[i] = c.Close
	}
	ema, ok := LastEMA(values, a.opts.Period)
	if !ok {
		a.logger.Warnw("signal history too short", "base", base, "target", target, "points", len(closes))
		return unavailable()
	}

	last := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if usable(values[i]) {
			last = values[i]
			break
		}
	}
	return Evaluate(last, ema)
}
