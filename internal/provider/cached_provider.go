package provider

import (
	"context"
	"time"

	"smartrate/internal/metrics"
	"smartrate/internal/ratecache"
)

// KindFiat is the cache kind of interbank rates.
const KindFiat = "fiat"

var _ RatesProvider = (*CachedRatesProviderDecorator)(nil)

// CachedRatesProviderDecorator wraps a RatesProvider with the spot rate cache.
// A hit skips network I/O; only successful fetches are written back.
type CachedRatesProviderDecorator struct {
	provider RatesProvider
	cache    ratecache.Cache
	kind     string
	metrics  *metrics.Recorder
}

// NewCachedRatesProvider creates a new CachedRatesProviderDecorator storing
// rates under "{kind}_{base}_{quote}".
func NewCachedRatesProvider(provider RatesProvider, cache ratecache.Cache, kind string, rec *metrics.Recorder) *CachedRatesProviderDecorator {
	return &CachedRatesProviderDecorator{
		provider: provider,
		cache:    cache,
		kind:     kind,
		metrics:  rec,
	}
}

// Name implements RatesProvider.
func (p *CachedRatesProviderDecorator) Name() string { return p.kind }

// GetRate attempts to fetch the rate from cache before calling the underlying provider.
func (p *CachedRatesProviderDecorator) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	if p.cache == nil {
		return p.provider.GetRate(ctx, base, quote)
	}

	key := ratecache.Key(p.kind, base, quote)
	if v, ok := p.cache.Get(ctx, key); ok {
		p.metrics.RecordCacheLookup(p.kind, true)
		return Rate{Value: v, Source: "cache", FetchedAt: time.Now().UTC()}, nil
	}
	p.metrics.RecordCacheLookup(p.kind, false)

	rate, err := p.provider.GetRate(ctx, base, quote)
	if err != nil {
		return Rate{}, err
	}

	p.cache.Set(ctx, key, rate.Value)
	return rate, nil
}
