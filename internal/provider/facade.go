package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartrate/internal/metrics"
)

var _ RatesProvider = (*ExchangeProviderFacade)(nil)

// ExchangeProviderFacade is an abstraction that calls providers sequentially.
// Every link enforces its own timeout, so a full walk is bounded by their sum.
type ExchangeProviderFacade struct {
	providers []RatesProvider
	metrics   *metrics.Recorder
}

// NewExchangeProviderFacade creates a new ExchangeProviderFacade with the given list of providers.
func NewExchangeProviderFacade(rec *metrics.Recorder, providers ...RatesProvider) *ExchangeProviderFacade {
	return &ExchangeProviderFacade{
		providers: providers,
		metrics:   rec,
	}
}

// Name implements RatesProvider.
func (p *ExchangeProviderFacade) Name() string { return "fallback" }

// GetRate calls providers sequentially until one succeeds.
func (p *ExchangeProviderFacade) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	var errs []error
	for _, prov := range p.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		rate, err := prov.GetRate(ctx, base, quote)
		p.metrics.RecordFetch(prov.Name(), time.Since(start), err)
		if err == nil {
			return rate, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", prov.Name(), err))
	}

	return Rate{}, fmt.Errorf("%w: all providers failed: %w", ErrSourceUnavailable, errors.Join(errs...))
}
