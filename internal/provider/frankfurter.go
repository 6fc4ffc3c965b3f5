package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ RatesProvider = (*FrankfurterProvider)(nil)

// FrankfurterProvider fetches interbank reference rates from a Frankfurter-compatible API.
// It is the fast primary link of the fiat chain.
type FrankfurterProvider struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewFrankfurterProvider creates a new FrankfurterProvider.
func NewFrankfurterProvider(baseURL string, timeoutSec int) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.dev/v1"
	}
	timeout := time.Duration(timeoutSec) * time.Second
	return &FrankfurterProvider{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements RatesProvider.
func (p *FrankfurterProvider) Name() string { return "frankfurter" }

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// GetRate retrieves the exchange rate between the specified base and quote currencies
func (p *FrankfurterProvider) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/latest?base=%s&symbols=%s", p.baseURL, base, quote)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return Rate{}, fmt.Errorf("frankfurter API request creation failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("frankfurter API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Rate{}, fmt.Errorf("frankfurter API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result frankfurterResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Rate{}, fmt.Errorf("failed to decode frankfurter API response: %w", err)
	}

	rateVal, ok := result.Rates[quote]
	if !ok {
		return Rate{}, fmt.Errorf("no rate for %s in frankfurter response", quote)
	}
	if !validRate(rateVal) {
		return Rate{}, fmt.Errorf("frankfurter returned invalid rate %v for %s/%s", rateVal, base, quote)
	}

	// Parse date from response if possible, otherwise use current time
	fetchedAt := time.Now().UTC()
	if resDate, err := time.Parse("2006-01-02", result.Date); err == nil {
		fetchedAt = resDate.UTC()
	}

	return Rate{Value: rateVal, Source: p.Name(), FetchedAt: fetchedAt}, nil
}
