package worker

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartrate/internal/arbitrage"
	"smartrate/internal/repository"
	"smartrate/internal/signal"
)

// ArchivePayload is the task payload of an archive write.
type ArchivePayload struct {
	ID           string          `json:"id"`
	Base         string          `json:"base"`
	Target       string          `json:"target"`
	Amount       decimal.Decimal `json:"amount"`
	BankRate     decimal.Decimal `json:"bank_rate"`
	MarketRate   decimal.Decimal `json:"market_rate"`
	CryptoRate   decimal.Decimal `json:"crypto_rate"`
	OfferRate    decimal.Decimal `json:"offer_rate"`
	BestSource   string          `json:"best_source"`
	MarketSource string          `json:"market_source"`
	Savings      decimal.Decimal `json:"savings"`
	Available    bool            `json:"available"`
	Signal       string          `json:"signal"`
	QuotedAt     time.Time       `json:"quoted_at"`
}

// NewArchivePayload converts a computed quote and its advice into a payload
// with a fresh ID. Rates keep 8 decimal places, money 2.
func NewArchivePayload(q arbitrage.Quote, s signal.Signal) ArchivePayload {
	return ArchivePayload{
		ID:           uuid.New().String(),
		Base:         q.Base,
		Target:       q.Target,
		Amount:       decimal.NewFromFloat(q.Amount).Round(2),
		BankRate:     decimal.NewFromFloat(q.BankRate).Round(8),
		MarketRate:   decimal.NewFromFloat(q.MarketRate).Round(8),
		CryptoRate:   decimal.NewFromFloat(q.CryptoRate).Round(8),
		OfferRate:    decimal.NewFromFloat(q.OfferRate).Round(8),
		BestSource:   q.BestSource,
		MarketSource: q.MarketSource,
		Savings:      decimal.NewFromFloat(q.Savings).Round(2),
		Available:    q.Available,
		Signal:       string(s.Kind),
		QuotedAt:     q.QuotedAt,
	}
}

// Record returns the row to store.
func (p ArchivePayload) Record() repository.ArchivedQuote {
	return repository.ArchivedQuote{
		ID:           p.ID,
		Base:         p.Base,
		Target:       p.Target,
		Amount:       p.Amount,
		BankRate:     p.BankRate,
		MarketRate:   p.MarketRate,
		CryptoRate:   p.CryptoRate,
		OfferRate:    p.OfferRate,
		BestSource:   p.BestSource,
		MarketSource: p.MarketSource,
		Savings:      p.Savings,
		Available:    p.Available,
		Signal:       p.Signal,
		QuotedAt:     p.QuotedAt,
	}
}
