package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptrac/cryptrac-engine/internal/rates"
	"github.com/cryptrac/cryptrac-engine/internal/service"
)

type flatRate struct{ per decimal.Decimal }

func (f flatRate) Estimate(_ context.Context, amount decimal.Decimal, from, to string) (*rates.Estimate, error) {
	return &rates.Estimate{
		From:            from,
		To:              to,
		Amount:          amount,
		EstimatedAmount: amount.Mul(f.per),
		MinAmount:       dec("0.0001"),
		Source:          rates.SourceGateway,
	}, nil
}

func TestPreviewHandler(t *testing.T) {
	t.Run("happy: quotes each requested currency", func(t *testing.T) {
		router := buildRouter(testDeps{
			merchants: memMerchants{testMerchantID: testMerchant()},
			links:     &memLinks{},
			provider:  rates.NewFallback(flatRate{per: dec("0.00001")}, rates.DefaultFallbackUSD(), 0),
		})

		body := fmt.Sprintf(`{"merchant_id":"%s","amount":100,"currencies":["btc","XRP"]}`, testMerchantID)
		w := postJSON(router, "/api/v1/preview", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp service.Preview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "USD", resp.Fiat)
		assert.True(t, resp.Breakdown.CustomerPaysTotal.Equal(dec("108")))
		assert.False(t, resp.Degraded)

		require.Len(t, resp.Quotes, 2)
		btc := resp.Quotes[0]
		assert.Equal(t, "BTC", btc.Currency)
		assert.True(t, btc.EstimatedAmount.Equal(dec("0.00108")))
		assert.Equal(t, rates.SourceGateway, btc.Source)
		require.NotNil(t, btc.PaymentURI)
		assert.True(t, strings.HasPrefix(btc.PaymentURI.URI, "bitcoin:bc1qmerchant"))

		xrp := resp.Quotes[1]
		require.NotNil(t, xrp.PaymentURI)
		assert.True(t, xrp.PaymentURI.IncludesExtraID)
	})

	t.Run("edge: static fallback marks the preview degraded", func(t *testing.T) {
		router, _ := setupMemRouter(t)

		body := fmt.Sprintf(`{"merchant_id":"%s","amount":100,"currencies":["BTC"]}`, testMerchantID)
		w := postJSON(router, "/api/v1/preview", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp service.Preview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Degraded)
		require.Len(t, resp.Quotes, 1)
		assert.True(t, resp.Quotes[0].Fallback)
		assert.True(t, resp.Quotes[0].EstimatedAmount.Equal(dec("0.0024")))
	})

	t.Run("edge: unsupported currency is reported per quote", func(t *testing.T) {
		router, _ := setupMemRouter(t)

		body := fmt.Sprintf(`{"merchant_id":"%s","amount":10,"currencies":["BTC","XMR"]}`, testMerchantID)
		w := postJSON(router, "/api/v1/preview", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp service.Preview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Quotes, 2)
		assert.Empty(t, resp.Quotes[0].Error)
		assert.NotEmpty(t, resp.Quotes[1].Error)
		assert.Nil(t, resp.Quotes[1].GatewayCode)
	})

	t.Run("bad: amount is required", func(t *testing.T) {
		router, _ := setupMemRouter(t)

		w := postJSON(router, "/api/v1/preview", fmt.Sprintf(`{"merchant_id":"%s"}`, testMerchantID))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"amount"`)
	})

	t.Run("bad: unknown merchant", func(t *testing.T) {
		router, _ := setupMemRouter(t)

		w := postJSON(router, "/api/v1/preview", `{"merchant_id":"00000000-0000-0000-0000-000000000001","amount":5}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
