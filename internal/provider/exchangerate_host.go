package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ RatesProvider = (*ExchangeRateHostProvider)(nil)

// ExchangeRateHostProvider fetches rates from the exchangerate.host API.
type ExchangeRateHostProvider struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewExchangeRateHostProvider creates a new ExchangeRateHostProvider with the given configuration.
func NewExchangeRateHostProvider(baseURL, apiKey string, timeoutSec int) *ExchangeRateHostProvider {
	if baseURL == "" {
		baseURL = "https://api.exchangerate.host"
	}
	timeout := time.Duration(timeoutSec) * time.Second
	return &ExchangeRateHostProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements RatesProvider.
func (p *ExchangeRateHostProvider) Name() string { return "exchangerate_host" }

// getLatestURL forms the API URL for fetching the rate.
func (p *ExchangeRateHostProvider) getLatestURL(base, quote string) string {
	return fmt.Sprintf("%s/live?access_key=%s&source=%s&currencies=%s",
		p.baseURL, p.apiKey, base, quote)
}

// exchangerate.host live API response structure
type erHostResponse struct {
	Success   bool               `json:"success"`
	Source    string             `json:"source"`
	Timestamp int64              `json:"timestamp"`
	Quotes    map[string]float64 `json:"quotes"`
}

// GetRate fetches the exchange rate for the given base/quote currency pair.
func (p *ExchangeRateHostProvider) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.getLatestURL(base, quote), http.NoBody)
	if err != nil {
		return Rate{}, fmt.Errorf("external API request creation failed: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("external API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Rate{}, fmt.Errorf("external API returned status %d: %s", resp.StatusCode, string(body))
	}
	var result erHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Rate{}, fmt.Errorf("failed to decode external API response: %w", err)
	}
	if !result.Success {
		return Rate{}, fmt.Errorf("external API returned success=false for %s/%s", base, quote)
	}
	// The API returns quotes keyed as "BASEQUOTE", e.g. "EURMXN"
	key := base + quote
	rateVal, ok := result.Quotes[key]
	if !ok {
		return Rate{}, fmt.Errorf("no rate for %s in response", key)
	}
	if !validRate(rateVal) {
		return Rate{}, fmt.Errorf("external API returned invalid rate %v for %s", rateVal, key)
	}

	fetchedAt := time.Now().UTC()
	if result.Timestamp > 0 {
		fetchedAt = time.Unix(result.Timestamp, 0).UTC()
	}
	return Rate{Value: rateVal, Source: p.Name(), FetchedAt: fetchedAt}, nil
}
