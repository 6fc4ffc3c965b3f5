package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

var (
	_ RatesProvider   = (*YahooChartProvider)(nil)
	_ HistoryProvider = (*YahooChartProvider)(nil)
)

// YahooChartProvider reads the Yahoo Finance v8 chart API. As a RatesProvider it
// takes the latest close of today's one-minute series; as a HistoryProvider it
// returns daily closes.
type YahooChartProvider struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewYahooChartProvider creates a new YahooChartProvider.
func NewYahooChartProvider(baseURL string, timeoutSec int) *YahooChartProvider {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	timeout := time.Duration(timeoutSec) * time.Second
	return &YahooChartProvider{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements RatesProvider.
func (p *YahooChartProvider) Name() string { return "yahoo" }

// PairTicker returns the Yahoo ticker of a currency pair, e.g. "EURMAD=X".
func PairTicker(base, quote string) string {
	return base + quote + "=X"
}

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// GetRate returns the most recent non-null one-minute close.
func (p *YahooChartProvider) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	res, err := p.chart(ctx, PairTicker(base, quote), "1d", "1m")
	if err != nil {
		return Rate{}, err
	}
	closes := res.closes()
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil || !validRate(*closes[i]) {
			continue
		}
		fetchedAt := time.Now().UTC()
		if i < len(res.Timestamp) {
			fetchedAt = time.Unix(res.Timestamp[i], 0).UTC()
		}
		return Rate{Value: *closes[i], Source: p.Name(), FetchedAt: fetchedAt}, nil
	}
	return Rate{}, fmt.Errorf("yahoo chart for %s has no usable close", PairTicker(base, quote))
}

// DailyCloses returns daily closes for period, oldest first. Days without a
// close are kept with a NaN value so callers can see the gap.
func (p *YahooChartProvider) DailyCloses(ctx context.Context, base, quote, period string) ([]DailyClose, error) {
	res, err := p.chart(ctx, PairTicker(base, quote), period, "1d")
	if err != nil {
		return nil, err
	}
	closes := res.closes()
	if len(closes) != len(res.Timestamp) {
		return nil, fmt.Errorf("yahoo chart for %s: %d timestamps but %d closes",
			PairTicker(base, quote), len(res.Timestamp), len(closes))
	}

	// Bars are stamped at exchange-local midnight.
	loc := time.FixedZone("exchange", res.Meta.GMTOffset)
	out := make([]DailyClose, 0, len(closes))
	for i, ts := range res.Timestamp {
		local := time.Unix(ts, 0).In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		v := math.NaN()
		if closes[i] != nil {
			v = *closes[i]
		}
		// Yahoo sometimes repeats the current day as a live bar.
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			out[n-1].Close = v
			continue
		}
		out = append(out, DailyClose{Date: day, Close: v})
	}
	return out, nil
}

func (r *yahooChartResult) closes() []*float64 {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	return r.Indicators.Quote[0].Close
}

func (p *YahooChartProvider) chart(ctx context.Context, ticker, period, interval string) (*yahooChartResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", interval)
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; smartrate/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo chart returned status %d: %s", resp.StatusCode, string(body))
	}

	var result yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode yahoo chart response: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s", ticker, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart returned no result for %s", ticker)
	}
	return &result.Chart.Result[0], nil
}
