package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ArchivedQuote is one persisted rate quote.
type ArchivedQuote struct {
	ID           string
	Base         string
	Target       string
	Amount       decimal.Decimal
	BankRate     decimal.Decimal
	MarketRate   decimal.Decimal
	CryptoRate   decimal.Decimal
	OfferRate    decimal.Decimal
	BestSource   string
	MarketSource string
	Savings      decimal.Decimal
	Available    bool
	Signal       string
	QuotedAt     time.Time
	ArchivedAt   time.Time
}

// QuoteArchive stores computed quotes for later analytics.
type QuoteArchive interface {
	// Insert stores q. Re-inserting the same pair, source and timestamp is a
	// no-op reported as inserted == false.
	Insert(ctx context.Context, q ArchivedQuote) (inserted bool, err error)
	ListRecent(ctx context.Context, base, target string, limit int) ([]ArchivedQuote, error)
}

// PostgresQuoteArchive is a QuoteArchive backed by PostgreSQL.
type PostgresQuoteArchive struct {
	db *sql.DB
}

// NewPostgresQuoteArchive creates a new PostgresQuoteArchive.
func NewPostgresQuoteArchive(db *sql.DB) *PostgresQuoteArchive {
	return &PostgresQuoteArchive{db: db}
}

var _ QuoteArchive = (*PostgresQuoteArchive)(nil)

// Insert implements QuoteArchive.
func (r *PostgresQuoteArchive) Insert(ctx context.Context, q ArchivedQuote) (bool, error) {
	query := `INSERT INTO rate_quotes
                (id, base, target, amount, bank_rate, market_rate, crypto_rate, offer_rate,
                 best_source, market_source, savings, available, signal, quoted_at)
              VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
              ON CONFLICT ON CONSTRAINT rate_quotes_pair_source_time DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		q.ID, q.Base, q.Target, q.Amount, q.BankRate, q.MarketRate, q.CryptoRate, q.OfferRate,
		q.BestSource, q.MarketSource, q.Savings, q.Available, q.Signal, q.QuotedAt)
	if err != nil {
		return false, fmt.Errorf("failed to archive quote: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ListRecent returns up to limit archived quotes for the pair, newest first.
func (r *PostgresQuoteArchive) ListRecent(ctx context.Context, base, target string, limit int) ([]ArchivedQuote, error) {
	query := `SELECT id::text, base, target, amount, bank_rate, market_rate, crypto_rate, offer_rate,
                     best_source, market_source, savings, available, signal, quoted_at, archived_at
              FROM rate_quotes
              WHERE base=$1 AND target=$2
              ORDER BY quoted_at DESC
              LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, base, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived quotes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	out := make([]ArchivedQuote, 0, limit)
	for rows.Next() {
		var q ArchivedQuote
		if err := rows.Scan(&q.ID, &q.Base, &q.Target, &q.Amount, &q.BankRate, &q.MarketRate,
			&q.CryptoRate, &q.OfferRate, &q.BestSource, &q.MarketSource, &q.Savings,
			&q.Available, &q.Signal, &q.QuotedAt, &q.ArchivedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
