package nowpayments

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptrac/cryptrac-engine/internal/rates"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		BaseDelay:    time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		BreakerDelay: time.Second,
	}
}

func TestClient_Estimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/estimate":
			assert.Equal(t, "100", r.URL.Query().Get("amount"))
			assert.Equal(t, "usd", r.URL.Query().Get("currency_from"))
			assert.Equal(t, "btc", r.URL.Query().Get("currency_to"))
			_, _ = w.Write([]byte(`{"currency_from":"usd","amount_from":100,"currency_to":"btc","estimated_amount":"0.00221153"}`))
		case "/v1/min-amount":
			_, _ = w.Write([]byte(`{"currency_from":"btc","currency_to":"btc","min_amount":0.0001}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", WithRetryConfig(fastRetry()))

	t.Run("happy: estimate with min amount", func(t *testing.T) {
		est, err := c.Estimate(t.Context(), decimal.NewFromInt(100), "USD", "BTC")
		require.NoError(t, err)
		assert.Equal(t, "BTC", est.To)
		assert.True(t, est.EstimatedAmount.Equal(decimal.RequireFromString("0.00221153")))
		assert.True(t, est.MinAmount.Equal(decimal.RequireFromString("0.0001")))
		assert.False(t, est.Fallback)
		assert.Equal(t, rates.SourceGateway, est.Source)
	})
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/estimate" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"estimated_amount":1.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithRetryConfig(fastRetry()))
	est, err := c.Estimate(t.Context(), decimal.NewFromInt(10), "usd", "eth")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.True(t, est.EstimatedAmount.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, est.MinAmount.IsZero())
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad currency"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithRetryConfig(fastRetry()))
	_, err := c.Estimate(t.Context(), decimal.NewFromInt(10), "usd", "zzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, rates.ErrUpstreamRateUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_EnabledCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"currencies":[
			{"code":"BTC","name":"Bitcoin","enable":true},
			{"code":"USDTTRC20","name":"Tether","network":"trx","enable":true},
			{"code":"XMR","name":"Monero","enable":false}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithRetryConfig(fastRetry()))
	codes, err := c.EnabledCodes(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"btc", "usdttrc20"}, codes)
}
