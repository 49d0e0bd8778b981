package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls int
	est   *Estimate
	err   error
}

func (s *stubProvider) Estimate(_ context.Context, amount decimal.Decimal, from, to string) (*Estimate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := *s.est
	out.Amount = amount
	out.From, out.To = from, to
	return &out, nil
}

func TestFallback_Estimate(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	t.Run("happy: upstream answer is returned", func(t *testing.T) {
		up := &stubProvider{est: &Estimate{EstimatedAmount: decimal.RequireFromString("0.0022"), Source: SourceGateway}}
		f := NewFallback(up, DefaultFallbackUSD(), time.Second)

		est, err := f.Estimate(t.Context(), hundred, "usd", "btc")
		require.NoError(t, err)
		assert.False(t, est.Fallback)
		assert.Equal(t, 1, up.calls)
		assert.True(t, est.EstimatedAmount.Equal(decimal.RequireFromString("0.0022")))
	})

	t.Run("edge: stablecoins skip the lookup", func(t *testing.T) {
		up := &stubProvider{err: errors.New("should not be called")}
		f := NewFallback(up, DefaultFallbackUSD(), time.Second)

		est, err := f.Estimate(t.Context(), hundred, "USD", "USDTTRC20")
		require.NoError(t, err)
		assert.Equal(t, 0, up.calls)
		assert.True(t, est.EstimatedAmount.Equal(hundred))
		assert.Equal(t, SourceStableCoin, est.Source)
	})

	t.Run("edge: upstream failure uses the static table", func(t *testing.T) {
		up := &stubProvider{err: errors.New("timeout")}
		f := NewFallback(up, DefaultFallbackUSD(), time.Second)

		est, err := f.Estimate(t.Context(), decimal.NewFromInt(90), "USD", "BTC")
		require.NoError(t, err)
		assert.True(t, est.Fallback)
		assert.Equal(t, SourceFallback, est.Source)
		assert.True(t, est.EstimatedAmount.Equal(decimal.RequireFromString("0.002")), est.EstimatedAmount.String())
	})

	t.Run("edge: network suffixed code matches its base", func(t *testing.T) {
		f := NewFallback(nil, DefaultFallbackUSD(), time.Second)

		est, err := f.Estimate(t.Context(), decimal.NewFromInt(30), "USD", "BNBBSC")
		require.NoError(t, err)
		assert.True(t, est.EstimatedAmount.Equal(decimal.RequireFromString("0.1")))
	})

	t.Run("bad: unknown currency without upstream", func(t *testing.T) {
		f := NewFallback(&stubProvider{err: errors.New("down")}, DefaultFallbackUSD(), time.Second)

		_, err := f.Estimate(t.Context(), hundred, "USD", "XMR")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUpstreamRateUnavailable))
	})
}

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache_Estimate(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	t.Run("happy: second call is served from redis", func(t *testing.T) {
		rdb := newTestRedis(t)
		up := &stubProvider{est: &Estimate{EstimatedAmount: decimal.RequireFromString("0.0035"), Source: SourceGateway}}
		c := NewCache(rdb, up, time.Minute)

		first, err := c.Estimate(t.Context(), hundred, "USD", "ETH")
		require.NoError(t, err)
		assert.Equal(t, SourceGateway, first.Source)

		second, err := c.Estimate(t.Context(), hundred, "USD", "ETH")
		require.NoError(t, err)
		assert.Equal(t, SourceCache, second.Source)
		assert.True(t, second.EstimatedAmount.Equal(first.EstimatedAmount))
		assert.Equal(t, 1, up.calls)

		ttl := rdb.TTL(t.Context(), cacheKey(hundred, "USD", "ETH")).Val()
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("edge: fallback quotes are not cached", func(t *testing.T) {
		rdb := newTestRedis(t)
		up := &stubProvider{est: &Estimate{EstimatedAmount: decimal.NewFromInt(1), Fallback: true, Source: SourceFallback}}
		c := NewCache(rdb, up, time.Minute)

		_, err := c.Estimate(t.Context(), hundred, "USD", "SOL")
		require.NoError(t, err)
		_, err = c.Estimate(t.Context(), hundred, "USD", "SOL")
		require.NoError(t, err)
		assert.Equal(t, 2, up.calls)
	})

	t.Run("edge: redis outage falls through to the provider", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = rdb.Close() })
		mr.Close()

		up := &stubProvider{est: &Estimate{EstimatedAmount: decimal.NewFromInt(2), Source: SourceGateway}}
		c := NewCache(rdb, up, time.Minute)

		est, err := c.Estimate(t.Context(), hundred, "USD", "LTC")
		require.NoError(t, err)
		assert.Equal(t, SourceGateway, est.Source)
	})

	t.Run("bad: provider error is returned", func(t *testing.T) {
		rdb := newTestRedis(t)
		c := NewCache(rdb, &stubProvider{err: ErrUpstreamRateUnavailable}, time.Minute)

		_, err := c.Estimate(t.Context(), hundred, "USD", "BTC")
		assert.ErrorIs(t, err, ErrUpstreamRateUnavailable)
	})
}
