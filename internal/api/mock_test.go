package api

import (
	"context"

	"smartrate/internal/ratecache"
	"smartrate/internal/repository"
	"smartrate/internal/service"
)

// mockQuoteService implements service.QuoteServiceInterface for testing.
type mockQuoteService struct {
	smartRateFunc    func(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error)
	quoteHistoryFunc func(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error)
	clearCacheFunc   func(ctx context.Context) error
	cacheStatsFunc   func(ctx context.Context) (ratecache.Stats, error)
}

func (m *mockQuoteService) SmartRate(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error) {
	return m.smartRateFunc(ctx, base, target, amount)
}

func (m *mockQuoteService) QuoteHistory(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error) {
	return m.quoteHistoryFunc(ctx, base, target, limit)
}

func (m *mockQuoteService) ClearCache(ctx context.Context) error {
	return m.clearCacheFunc(ctx)
}

func (m *mockQuoteService) CacheStats(ctx context.Context) (ratecache.Stats, error) {
	return m.cacheStatsFunc(ctx)
}

// mockForecastService implements service.ForecastServiceInterface for testing.
type mockForecastService struct {
	predictFunc func(ctx context.Context, pair string, days int) (*service.Prediction, error)
}

func (m *mockForecastService) Predict(ctx context.Context, pair string, days int) (*service.Prediction, error) {
	return m.predictFunc(ctx, pair, days)
}
