package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"smartrate/internal/arbitrage"
	"smartrate/internal/forecast"
	"smartrate/internal/ratecache"
	"smartrate/internal/repository"
	"smartrate/internal/service"
	"smartrate/internal/signal"
)

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func eurMadQuote(amount float64) arbitrage.Quote {
	return arbitrage.Quote{
		Base:         "EUR",
		Target:       "MAD",
		Amount:       amount,
		BankRate:     10.53,
		MarketRate:   10.8,
		CryptoRate:   10.962,
		OfferRate:    10.90719,
		BestSource:   arbitrage.SourceCrypto,
		MarketSource: "frankfurter",
		Savings:      377.19000000000051,
		FinalAmount:  10907.19,
		Fees:         54.809999999999,
		Available:    true,
		QuotedAt:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleSmartRate(t *testing.T) {
	t.Run("quote is rendered with rounded values", func(t *testing.T) {
		var gotAmount float64
		svc := &mockQuoteService{
			smartRateFunc: func(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error) {
				gotAmount = amount
				return &service.SmartRateResult{
					Quote:  eurMadQuote(amount),
					Signal: signal.Signal{Kind: signal.Buy, Confidence: signal.ConfidenceHigh},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD?amount=1000", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if gotAmount != 1000 {
			t.Errorf("Expected amount 1000, got %v", gotAmount)
		}

		var resp SmartRateResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Status != StatusOK {
			t.Errorf("Expected status ok, got %s", resp.Status)
		}
		if resp.Meta.Pair != "EUR/MAD" {
			t.Errorf("Expected pair EUR/MAD, got %s", resp.Meta.Pair)
		}
		if resp.Meta.Timestamp != "2025-03-10T12:00:00Z" {
			t.Errorf("Unexpected timestamp %s", resp.Meta.Timestamp)
		}
		if resp.MarketIntelligence.Savings != 377.19 {
			t.Errorf("Expected savings 377.19, got %v", resp.MarketIntelligence.Savings)
		}
		if resp.Offer.Fees != 54.81 {
			t.Errorf("Expected fees 54.81, got %v", resp.Offer.Fees)
		}
		if resp.Offer.Rate != 10.90719 {
			t.Errorf("Expected offer rate 10.90719, got %v", resp.Offer.Rate)
		}
		if resp.MarketIntelligence.BestLiquiditySource != "crypto" {
			t.Errorf("Expected best source crypto, got %s", resp.MarketIntelligence.BestLiquiditySource)
		}
		if resp.Advisor.Signal != "BUY" || resp.Advisor.Confidence != "high" {
			t.Errorf("Unexpected advisor %+v", resp.Advisor)
		}
	})

	t.Run("missing amount uses default", func(t *testing.T) {
		var gotAmount float64
		svc := &mockQuoteService{
			smartRateFunc: func(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error) {
				gotAmount = amount
				return &service.SmartRateResult{Quote: eurMadQuote(amount)}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if gotAmount != DefaultAmount {
			t.Errorf("Expected default amount %d, got %v", DefaultAmount, gotAmount)
		}
	})

	t.Run("unavailable quote returns 200 with status unavailable", func(t *testing.T) {
		svc := &mockQuoteService{
			smartRateFunc: func(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error) {
				return &service.SmartRateResult{
					Quote: arbitrage.Quote{
						Base: "EUR", Target: "MAD", Amount: amount,
						BestSource: arbitrage.SourceInterbank,
						QuotedAt:   time.Now(),
					},
					Signal: signal.Signal{Kind: signal.Unavailable, Confidence: signal.ConfidenceNone},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD?amount=50", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp SmartRateResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Status != StatusUnavailable {
			t.Errorf("Expected status unavailable, got %s", resp.Status)
		}
		if resp.Offer.Rate != 0 || resp.MarketIntelligence.MarketRate != 0 {
			t.Errorf("Expected zero rates, got %+v %+v", resp.Offer, resp.MarketIntelligence)
		}
		if resp.Advisor.Signal != "UNAVAILABLE" {
			t.Errorf("Expected UNAVAILABLE signal, got %s", resp.Advisor.Signal)
		}
	})

	t.Run("non-numeric amount returns 400", func(t *testing.T) {
		svc := &mockQuoteService{}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD?amount=lots", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("negative amount fails validation", func(t *testing.T) {
		svc := &mockQuoteService{}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD?amount=-5", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", w.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Error != "amount failed gte=0" {
			t.Errorf("Unexpected error message '%s'", resp.Error)
		}
	})

	t.Run("invalid pair returns 400", func(t *testing.T) {
		svc := &mockQuoteService{
			smartRateFunc: func(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error) {
				return nil, service.ErrInvalidPairFormat
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EURO/MAD", nil)
		req = withURLParams(req, "base", "EURO", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unexpected error returns 500 without details", func(t *testing.T) {
		svc := &mockQuoteService{
			smartRateFunc: func(ctx context.Context, base, target string, amount float64) (*service.SmartRateResult, error) {
				return nil, errors.New("boom: secret details")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleSmartRate(svc).ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
		var resp ErrorResponse
		_ = json.NewDecoder(w.Body).Decode(&resp)
		if resp.Error != "Internal error" {
			t.Errorf("Expected generic error, got '%s'", resp.Error)
		}
	})
}

func TestHandleQuoteHistory(t *testing.T) {
	t.Run("returns archived quotes", func(t *testing.T) {
		var gotLimit int
		svc := &mockQuoteService{
			quoteHistoryFunc: func(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error) {
				gotLimit = limit
				return []repository.ArchivedQuote{{
					ID:         "q-1",
					Base:       "EUR",
					Target:     "MAD",
					Amount:     decimal.RequireFromString("1000"),
					BankRate:   decimal.RequireFromString("10.53"),
					MarketRate: decimal.RequireFromString("10.8"),
					CryptoRate: decimal.RequireFromString("10.962"),
					OfferRate:  decimal.RequireFromString("10.90719"),
					BestSource: "crypto",
					Savings:    decimal.RequireFromString("377.19"),
					Signal:     "BUY",
					QuotedAt:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
				}}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD/history?limit=5", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleQuoteHistory(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if gotLimit != 5 {
			t.Errorf("Expected limit 5, got %d", gotLimit)
		}
		var resp QuoteHistoryResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Quotes) != 1 {
			t.Fatalf("Expected 1 quote, got %d", len(resp.Quotes))
		}
		if resp.Quotes[0].OfferRate != "10.90719" {
			t.Errorf("Expected offer rate 10.90719, got %s", resp.Quotes[0].OfferRate)
		}
		if resp.Quotes[0].Amount != "1000.00" {
			t.Errorf("Expected amount 1000.00, got %s", resp.Quotes[0].Amount)
		}
	})

	t.Run("limit out of range returns 400", func(t *testing.T) {
		svc := &mockQuoteService{}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD/history?limit=500", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleQuoteHistory(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("disabled archive returns 503", func(t *testing.T) {
		svc := &mockQuoteService{
			quoteHistoryFunc: func(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error) {
				return nil, service.ErrArchiveDisabled
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/smart-rate/EUR/MAD/history", nil)
		req = withURLParams(req, "base", "EUR", "target", "MAD")
		w := httptest.NewRecorder()

		HandleQuoteHistory(svc).ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestHandlePredict(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

	t.Run("forecast and history are rendered", func(t *testing.T) {
		var gotDays int
		svc := &mockForecastService{
			predictFunc: func(ctx context.Context, pair string, days int) (*service.Prediction, error) {
				gotDays = days
				return &service.Prediction{
					Base:   "EUR",
					Target: "MAD",
					Forecast: forecast.Result{
						Dates:        []time.Time{day(11), day(12)},
						ModelA:       []float64{10.81, 10.82},
						ModelB:       []float64{10.83, 10.84},
						EnsembleMean: []float64{10.82, 10.83},
						Confidence:   forecast.ConfidenceHigh,
						ModelsUsed:   []string{"arima", "trend"},
						LastClose:    10.8,
						LastDate:     day(10),
					},
					History: forecast.Series{
						{Date: day(6), Close: 10.7},
						{Date: day(7), Close: math.NaN()},
						{Date: day(10), Close: 10.8},
					},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/predict/EURMAD?days=2", nil)
		req = withURLParams(req, "pair", "EURMAD")
		w := httptest.NewRecorder()

		HandlePredict(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if gotDays != 2 {
			t.Errorf("Expected days 2, got %d", gotDays)
		}
		var resp PredictResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Meta.Pair != "EURMAD" || resp.Meta.PredictionDays != 2 {
			t.Errorf("Unexpected meta %+v", resp.Meta)
		}
		if resp.Predictions.Dates[0] != "2025-03-11" {
			t.Errorf("Expected first date 2025-03-11, got %s", resp.Predictions.Dates[0])
		}
		if len(resp.Predictions.EnsembleMean) != 2 || len(resp.Predictions.ModelA) != 2 || len(resp.Predictions.ModelB) != 2 {
			t.Errorf("Expected parallel arrays of length 2, got %+v", resp.Predictions)
		}
		if len(resp.History) != 2 {
			t.Errorf("Expected gap to be skipped leaving 2 history points, got %d", len(resp.History))
		}
		if resp.Confidence != "high" {
			t.Errorf("Expected confidence high, got %s", resp.Confidence)
		}
	})

	t.Run("missing days passes zero for the default horizon", func(t *testing.T) {
		gotDays := -1
		svc := &mockForecastService{
			predictFunc: func(ctx context.Context, pair string, days int) (*service.Prediction, error) {
				gotDays = days
				return &service.Prediction{Base: "EUR", Target: "MAD"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/predict/EURMAD", nil)
		req = withURLParams(req, "pair", "EURMAD")
		w := httptest.NewRecorder()

		HandlePredict(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if gotDays != 0 {
			t.Errorf("Expected days 0, got %d", gotDays)
		}
	})

	t.Run("no history returns 502", func(t *testing.T) {
		svc := &mockForecastService{
			predictFunc: func(ctx context.Context, pair string, days int) (*service.Prediction, error) {
				return nil, service.ErrNoHistory
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/predict/EURMAD", nil)
		req = withURLParams(req, "pair", "EURMAD")
		w := httptest.NewRecorder()

		HandlePredict(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})

	t.Run("invalid horizon returns 400", func(t *testing.T) {
		svc := &mockForecastService{
			predictFunc: func(ctx context.Context, pair string, days int) (*service.Prediction, error) {
				return nil, service.ErrInvalidHorizon
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/predict/EURMAD?days=90", nil)
		req = withURLParams(req, "pair", "EURMAD")
		w := httptest.NewRecorder()

		HandlePredict(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("non-numeric days returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/predict/EURMAD?days=week", nil)
		req = withURLParams(req, "pair", "EURMAD")
		w := httptest.NewRecorder()

		HandlePredict(&mockForecastService{}).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHandleCache(t *testing.T) {
	t.Run("clear", func(t *testing.T) {
		cleared := false
		svc := &mockQuoteService{
			clearCacheFunc: func(ctx context.Context) error {
				cleared = true
				return nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/cache/clear", nil)
		w := httptest.NewRecorder()

		HandleCacheClear(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if !cleared {
			t.Error("Expected cache to be cleared")
		}
		var resp CacheClearResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !resp.Success {
			t.Error("Expected success true")
		}
	})

	t.Run("stats", func(t *testing.T) {
		svc := &mockQuoteService{
			cacheStatsFunc: func(ctx context.Context) (ratecache.Stats, error) {
				return ratecache.Stats{
					TotalEntries: 1,
					TTL:          time.Minute,
					Entries: []ratecache.EntryStats{{
						Key:       "fiat_EUR_MAD",
						Rate:      10.8,
						Age:       12500 * time.Millisecond,
						ExpiresIn: 47500 * time.Millisecond,
						Valid:     true,
					}},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
		w := httptest.NewRecorder()

		HandleCacheStats(svc).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp CacheStatsResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.TotalEntries != 1 || resp.TTLSeconds != 60 {
			t.Errorf("Unexpected stats %+v", resp)
		}
		e := resp.Entries[0]
		if e.AgeSeconds != 12.5 || e.ExpiresIn != 47.5 || !e.IsValid {
			t.Errorf("Unexpected entry %+v", e)
		}
	})

	t.Run("stats error returns 500", func(t *testing.T) {
		svc := &mockQuoteService{
			cacheStatsFunc: func(ctx context.Context) (ratecache.Stats, error) {
				return ratecache.Stats{}, errors.New("redis down")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
		w := httptest.NewRecorder()

		HandleCacheStats(svc).ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HandleHealthz()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestHandleReadyz_NoDependencies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	HandleReadyz(nil, nil, nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
