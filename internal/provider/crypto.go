package provider

import (
	"context"
	"fmt"
	"time"

	"smartrate/internal/ratecache"
)

// KindCrypto is the cache kind of crypto-implied rates.
const KindCrypto = "crypto"

var _ RatesProvider = (*CryptoImpliedProvider)(nil)

// CryptoImpliedProvider stands in for a P2P crypto-settled market: it applies a
// fixed premium to the fiat rate.
type CryptoImpliedProvider struct {
	fiat    RatesProvider
	cache   ratecache.Cache
	premium float64
}

// NewCryptoImpliedProvider creates a provider deriving rates as fiat*(1+premium).
func NewCryptoImpliedProvider(fiat RatesProvider, cache ratecache.Cache, premium float64) *CryptoImpliedProvider {
	return &CryptoImpliedProvider{fiat: fiat, cache: cache, premium: premium}
}

// Name implements RatesProvider.
func (p *CryptoImpliedProvider) Name() string { return KindCrypto }

// Premium returns the configured multiplier offset.
func (p *CryptoImpliedProvider) Premium() float64 { return p.premium }

// GetRate serves the cached crypto rate or derives it from a fresh fiat fetch.
func (p *CryptoImpliedProvider) GetRate(ctx context.Context, base, quote string) (Rate, error) {
	if p.cache != nil {
		if v, ok := p.cache.Get(ctx, ratecache.Key(KindCrypto, base, quote)); ok {
			return Rate{Value: v, Source: "cache", FetchedAt: time.Now().UTC()}, nil
		}
	}
	fiat, err := p.fiat.GetRate(ctx, base, quote)
	if err != nil {
		return Rate{}, fmt.Errorf("crypto-implied %s/%s: %w", base, quote, err)
	}
	return p.Derive(ctx, base, quote, fiat)
}

// Derive computes the crypto-implied rate from an already fetched fiat rate,
// so a quote never pays for the fiat leg twice.
func (p *CryptoImpliedProvider) Derive(ctx context.Context, base, quote string, fiat Rate) (Rate, error) {
	if !validRate(fiat.Value) {
		return Rate{}, fmt.Errorf("%w: no fiat rate to derive %s/%s from", ErrSourceUnavailable, base, quote)
	}
	rate := Rate{
		Value:     fiat.Value * (1 + p.premium),
		Source:    KindCrypto,
		FetchedAt: fiat.FetchedAt,
	}
	if p.cache != nil {
		p.cache.Set(ctx, ratecache.Key(KindCrypto, base, quote), rate.Value)
	}
	return rate, nil
}
