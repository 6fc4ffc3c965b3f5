package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartrate/internal/ratecache"
)

func TestCryptoImpliedProvider_Derive(t *testing.T) {
	ctx := context.Background()

	t.Run("applies premium and caches", func(t *testing.T) {
		cache := ratecache.NewMemoryCache(time.Minute)
		p := NewCryptoImpliedProvider(new(MockProvider), cache, 0.015)

		r, err := p.Derive(ctx, "EUR", "MAD", Rate{Value: 10.80})
		require.NoError(t, err)
		assert.InDelta(t, 10.962, r.Value, 1e-9)
		assert.Equal(t, KindCrypto, r.Source)

		cached, ok := cache.Get(ctx, "crypto_EUR_MAD")
		assert.True(t, ok)
		assert.InDelta(t, 10.962, cached, 1e-9)
	})

	t.Run("zero fiat propagates failure", func(t *testing.T) {
		cache := ratecache.NewMemoryCache(time.Minute)
		p := NewCryptoImpliedProvider(new(MockProvider), cache, 0.015)

		_, err := p.Derive(ctx, "EUR", "MAD", Rate{})
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		_, ok := cache.Get(ctx, "crypto_EUR_MAD")
		assert.False(t, ok)
	})
}

func TestCryptoImpliedProvider_GetRate(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches fiat once then serves cache", func(t *testing.T) {
		fiat := new(MockProvider)
		fiat.On("GetRate", mock.Anything, "USD", "EUR").Return(Rate{Value: 0.9}, nil).Once()
		p := NewCryptoImpliedProvider(fiat, ratecache.NewMemoryCache(time.Minute), 0.015)

		r1, err := p.GetRate(ctx, "USD", "EUR")
		require.NoError(t, err)
		r2, err := p.GetRate(ctx, "USD", "EUR")
		require.NoError(t, err)

		assert.InDelta(t, 0.9135, r1.Value, 1e-9)
		assert.InDelta(t, r1.Value, r2.Value, 1e-12)
		fiat.AssertExpectations(t)
	})

	t.Run("fiat failure", func(t *testing.T) {
		fiat := new(MockProvider)
		fiat.On("GetRate", mock.Anything, "USD", "EUR").Return(Rate{}, ErrSourceUnavailable)
		p := NewCryptoImpliedProvider(fiat, nil, 0.015)

		_, err := p.GetRate(ctx, "USD", "EUR")
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})
}
