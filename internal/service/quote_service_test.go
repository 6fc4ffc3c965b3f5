package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"smartrate/internal/arbitrage"
	"smartrate/internal/ratecache"
	"smartrate/internal/repository"
	"smartrate/internal/signal"
)

// Mock quoter
type mockQuoter struct {
	quoteFunc func(ctx context.Context, base, target string, amount float64) arbitrage.Quote
}

func (m *mockQuoter) Quote(ctx context.Context, base, target string, amount float64) arbitrage.Quote {
	return m.quoteFunc(ctx, base, target, amount)
}

// Mock advisor
type mockAdvisor struct {
	adviseFunc func(ctx context.Context, base, target string) signal.Signal
}

func (m *mockAdvisor) Advise(ctx context.Context, base, target string) signal.Signal {
	return m.adviseFunc(ctx, base, target)
}

// Recording sink
type recordingSink struct {
	mu     sync.Mutex
	quotes []arbitrage.Quote
}

func (s *recordingSink) Submit(q arbitrage.Quote, _ signal.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, q)
}

func (s *recordingSink) Wait() {}

// Mock archive
type mockArchive struct {
	listRecentFunc func(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error)
}

func (m *mockArchive) Insert(context.Context, repository.ArchivedQuote) (bool, error) {
	return true, nil
}

func (m *mockArchive) ListRecent(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error) {
	return m.listRecentFunc(ctx, base, target, limit)
}

func newQuoteService(q Quoter, a Advisor, sink *recordingSink, archive repository.QuoteArchive) *QuoteService {
	return NewQuoteService(q, a, sink, archive, ratecache.NewMemoryCache(time.Minute), NewValidator(), zap.NewNop().Sugar())
}

func availableQuote(_ context.Context, base, target string, amount float64) arbitrage.Quote {
	return arbitrage.Quote{Base: base, Target: target, Amount: amount, MarketRate: 10.8, Available: true}
}

func neutral(context.Context, string, string) signal.Signal {
	return signal.Signal{Kind: signal.Neutral, Confidence: signal.ConfidenceMedium}
}

func TestIsValidCurrencyCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"USD", true},
		{"EUR", true},
		{"MAD", true},
		{"usd", true},   // should accept lowercase and convert
		{"US", false},   // too short
		{"USDA", false}, // too long
		{"US1", false},  // contains number
		{"US$", false},  // contains special char
		{"", false},     // empty
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			result := IsValidCurrencyCode(tc.code)
			if result != tc.valid {
				t.Errorf("IsValidCurrencyCode(%q) = %v, want %v", tc.code, result, tc.valid)
			}
		})
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		pair   string
		base   string
		target string
		err    error
	}{
		{"EURMAD", "EUR", "MAD", nil},
		{"eurmad", "EUR", "MAD", nil},
		{"EUR-MAD", "EUR", "MAD", nil},
		{"EUR_MAD", "EUR", "MAD", nil},
		{"EUR/MAD", "EUR", "MAD", nil},
		{"EURMAD=X", "EUR", "MAD", nil},
		{"EUR MAD", "", "", ErrInvalidPairFormat},
		{"EURMA", "", "", ErrInvalidPairFormat},
		{"EUR12D", "", "", ErrInvalidPairFormat},
		{"", "", "", ErrInvalidPairFormat},
	}

	for _, tc := range tests {
		t.Run(tc.pair, func(t *testing.T) {
			base, target, err := ParsePair(tc.pair)
			if !errors.Is(err, tc.err) {
				t.Fatalf("ParsePair(%q) error = %v, want %v", tc.pair, err, tc.err)
			}
			if base != tc.base || target != tc.target {
				t.Errorf("ParsePair(%q) = %s/%s, want %s/%s", tc.pair, base, target, tc.base, tc.target)
			}
		})
	}
}

func TestSmartRate_Validation(t *testing.T) {
	tests := []struct {
		base    string
		target  string
		amount  float64
		errType error
	}{
		{"EU", "MAD", 1, ErrInvalidPairFormat},
		{"EUR", "12N", 1, ErrInvalidPairFormat},
		{"ABC", "USD", 1, ErrUnsupportedCurrency},
		{"USD", "XYZ", 1, ErrUnsupportedCurrency},
		{"EUR", "eur", 1, ErrSamePair},
		{"EUR", "MAD", -1, ErrInvalidAmount},
		{"EUR", "MAD", math.NaN(), ErrInvalidAmount},
	}

	for _, tc := range tests {
		t.Run(tc.base+"/"+tc.target, func(t *testing.T) {
			svc := newQuoteService(nil, nil, &recordingSink{}, nil)
			_, err := svc.SmartRate(context.Background(), tc.base, tc.target, tc.amount)
			if !errors.Is(err, tc.errType) {
				t.Errorf("Expected error %v for %s/%s, got %v", tc.errType, tc.base, tc.target, err)
			}
		})
	}
}

func TestSmartRate_Success(t *testing.T) {
	sink := &recordingSink{}
	var gotBase, gotTarget string
	quoter := &mockQuoter{quoteFunc: func(ctx context.Context, base, target string, amount float64) arbitrage.Quote {
		gotBase, gotTarget = base, target
		return availableQuote(ctx, base, target, amount)
	}}
	advisor := &mockAdvisor{adviseFunc: func(context.Context, string, string) signal.Signal {
		return signal.Signal{Kind: signal.Buy, Confidence: signal.ConfidenceHigh}
	}}

	res, err := newQuoteService(quoter, advisor, sink, nil).SmartRate(context.Background(), "eur", "mad", 1000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotBase != "EUR" || gotTarget != "MAD" {
		t.Errorf("Expected normalized EUR/MAD, got %s/%s", gotBase, gotTarget)
	}
	if res.Signal.Kind != signal.Buy {
		t.Errorf("Expected BUY, got %s", res.Signal.Kind)
	}
	if len(sink.quotes) != 1 {
		t.Errorf("Expected one archived quote, got %d", len(sink.quotes))
	}
}

func TestSmartRate_UnavailableIsNotArchived(t *testing.T) {
	sink := &recordingSink{}
	quoter := &mockQuoter{quoteFunc: func(_ context.Context, base, target string, amount float64) arbitrage.Quote {
		return arbitrage.Quote{Base: base, Target: target, Amount: amount, BestSource: arbitrage.SourceInterbank}
	}}
	advisor := &mockAdvisor{adviseFunc: func(context.Context, string, string) signal.Signal {
		return signal.Signal{Kind: signal.Unavailable, Confidence: signal.ConfidenceNone}
	}}

	res, err := newQuoteService(quoter, advisor, sink, nil).SmartRate(context.Background(), "EUR", "MAD", 1000)
	if err != nil {
		t.Fatalf("Expected degraded result, got error %v", err)
	}
	if res.Quote.Available {
		t.Error("Expected unavailable quote")
	}
	if len(sink.quotes) != 0 {
		t.Errorf("Expected nothing archived, got %d", len(sink.quotes))
	}
}

func TestQuoteHistory(t *testing.T) {
	t.Run("archive disabled", func(t *testing.T) {
		svc := newQuoteService(nil, nil, &recordingSink{}, nil)
		_, err := svc.QuoteHistory(context.Background(), "EUR", "MAD", 10)
		if !errors.Is(err, ErrArchiveDisabled) {
			t.Errorf("Expected ErrArchiveDisabled, got %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		archive := &mockArchive{listRecentFunc: func(context.Context, string, string, int) ([]repository.ArchivedQuote, error) {
			return nil, errors.New("connection reset")
		}}
		svc := newQuoteService(nil, nil, &recordingSink{}, archive)
		_, err := svc.QuoteHistory(context.Background(), "EUR", "MAD", 10)
		if !errors.Is(err, ErrInternal) {
			t.Errorf("Expected ErrInternal, got %v", err)
		}
	})

	t.Run("lists", func(t *testing.T) {
		archive := &mockArchive{listRecentFunc: func(_ context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error) {
			if base != "EUR" || target != "MAD" || limit != 5 {
				t.Errorf("Unexpected args %s %s %d", base, target, limit)
			}
			return []repository.ArchivedQuote{{ID: "a"}}, nil
		}}
		svc := newQuoteService(nil, nil, &recordingSink{}, archive)
		quotes, err := svc.QuoteHistory(context.Background(), "eur", "mad", 5)
		if err != nil || len(quotes) != 1 {
			t.Errorf("Expected one quote, got %v, %v", quotes, err)
		}
	})
}

func TestCacheAdministration(t *testing.T) {
	ctx := context.Background()
	svc := newQuoteService(nil, nil, &recordingSink{}, nil)
	svc.cache.Set(ctx, "fiat_EUR_MAD", 10.8)

	st, err := svc.CacheStats(ctx)
	if err != nil || st.TotalEntries != 1 {
		t.Fatalf("Expected one entry, got %+v, %v", st, err)
	}
	if err := svc.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	st, _ = svc.CacheStats(ctx)
	if st.TotalEntries != 0 {
		t.Errorf("Expected empty cache, got %d entries", st.TotalEntries)
	}
}
