// Package arbitrage combines source rates into a bank/market/crypto/offer quote.
package arbitrage

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"smartrate/internal/provider"
)

// Best source names.
const (
	SourceInterbank = "interbank"
	SourceCrypto    = "crypto"
)

// Margins holds the spread model applied to source rates.
type Margins struct {
	Bank     float64 // typical incumbent bank spread below the interbank rate
	Platform float64 // our spread below the best available rate
}

// DefaultMargins returns the 2.5% bank and 0.5% platform margins.
func DefaultMargins() Margins {
	return Margins{Bank: 0.025, Platform: 0.005}
}

// CryptoDeriver derives a crypto-implied rate from an already fetched fiat rate.
type CryptoDeriver interface {
	Derive(ctx context.Context, base, quote string, fiat provider.Rate) (provider.Rate, error)
}

// Quote is the result of one arbitrage computation. It is never mutated after
// Engine.Quote returns it. When Available is false no source produced a rate
// and every rate, amount and saving is zero.
type Quote struct {
	Base         string
	Target       string
	Amount       float64
	BankRate     float64
	MarketRate   float64
	CryptoRate   float64
	OfferRate    float64
	BestSource   string
	MarketSource string
	Savings      float64
	FinalAmount  float64
	Fees         float64
	Available    bool
	QuotedAt     time.Time
}

// Engine computes arbitrage quotes.
type Engine struct {
	fiat    provider.RatesProvider
	crypto  CryptoDeriver
	margins Margins
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewEngine creates an Engine. fiat is usually the cached fallback chain and
// crypto the crypto-implied provider built on top of it.
func NewEngine(fiat provider.RatesProvider, crypto CryptoDeriver, margins Margins, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		fiat:    fiat,
		crypto:  crypto,
		margins: margins,
		logger:  logger,
		now:     time.Now,
	}
}

// Quote fetches the fiat rate once, derives the crypto-implied rate from it and
// applies the margin model. Source failure never returns an error: the quote
// comes back with Available set to false instead.
func (e *Engine) Quote(ctx context.Context, base, target string, amount float64) Quote {
	q := Quote{
		Base:       base,
		Target:     target,
		Amount:     amount,
		BestSource: SourceInterbank,
		QuotedAt:   e.now().UTC(),
	}

	fiat, err := e.fiat.GetRate(ctx, base, target)
	if err != nil {
		e.logger.Warnw("fiat rate unavailable", "base", base, "target", target, "error", err)
		return q
	}

	crypto, err := e.crypto.Derive(ctx, base, target, fiat)
	if err != nil {
		// The fiat leg is enough to quote.
		e.logger.Warnw("crypto rate unavailable", "base", base, "target", target, "error", err)
		crypto = provider.Rate{}
	}

	return e.compute(q, fiat, crypto.Value)
}

func (e *Engine) compute(q Quote, fiat provider.Rate, crypto float64) Quote {
	q.Available = true
	q.MarketRate = fiat.Value
	q.MarketSource = fiat.Source
	q.CryptoRate = crypto
	q.BankRate = fiat.Value * (1 - e.margins.Bank)

	best := fiat.Value
	if crypto > fiat.Value {
		best = crypto
		q.BestSource = SourceCrypto
	}

	q.OfferRate = best * (1 - e.margins.Platform)
	q.FinalAmount = q.Amount * q.OfferRate
	q.Fees = q.Amount * (best - q.OfferRate)
	q.Savings = q.FinalAmount - q.Amount*q.BankRate
	if math.IsNaN(q.Savings) || math.IsInf(q.Savings, 0) {
		e.logger.Errorw("non-finite quote", "base", q.Base, "target", q.Target, "fiat", fiat.Value, "crypto", crypto)
		return Quote{Base: q.Base, Target: q.Target, Amount: q.Amount, BestSource: SourceInterbank, QuotedAt: q.QuotedAt}
	}
	return q
}
