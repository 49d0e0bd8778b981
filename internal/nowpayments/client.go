// Package nowpayments is a small client for the NOWPayments REST API,
// covering the estimate, minimum amount and currency catalog endpoints.
package nowpayments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/rates"
)

const DefaultBaseURL = "https://api.nowpayments.io"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   failsafe.Executor[*http.Response]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) { c.executor = newExecutor(cfg) }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		executor:   newExecutor(DefaultRetryConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type estimateResponse struct {
	CurrencyFrom    string          `json:"currency_from"`
	AmountFrom      decimal.Decimal `json:"amount_from"`
	CurrencyTo      string          `json:"currency_to"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
}

type minAmountResponse struct {
	CurrencyFrom string          `json:"currency_from"`
	CurrencyTo   string          `json:"currency_to"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
}

// Currency is one entry of the gateway's full currency catalog.
type Currency struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Network       string `json:"network"`
	Enable        bool   `json:"enable"`
	ExtraIDExists bool   `json:"extra_id_exists"`
}

type currenciesResponse struct {
	Currencies []Currency `json:"currencies"`
}

// Estimate quotes amount of from in to, enriched with the gateway's
// minimum amount. A failing min-amount lookup leaves MinAmount zero.
func (c *Client) Estimate(ctx context.Context, amount decimal.Decimal, from, to string) (*rates.Estimate, error) {
	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("currency_from", strings.ToLower(from))
	q.Set("currency_to", strings.ToLower(to))

	var est estimateResponse
	if err := c.get(ctx, "/v1/estimate", q, &est); err != nil {
		return nil, fmt.Errorf("%w: estimate %s->%s: %v", rates.ErrUpstreamRateUnavailable, from, to, err)
	}

	out := &rates.Estimate{
		From:            strings.ToUpper(from),
		To:              strings.ToUpper(to),
		Amount:          amount,
		EstimatedAmount: est.EstimatedAmount,
		Source:          rates.SourceGateway,
	}

	// minimum payable in the target currency, settled in the same currency
	if limits, err := c.MinAmount(ctx, to, to); err == nil {
		out.MinAmount = limits.MinAmount
		out.MaxAmount = limits.MaxAmount
	}
	return out, nil
}

type Limits struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

func (c *Client) MinAmount(ctx context.Context, from, to string) (*Limits, error) {
	q := url.Values{}
	q.Set("currency_from", strings.ToLower(from))
	q.Set("currency_to", strings.ToLower(to))

	var resp minAmountResponse
	if err := c.get(ctx, "/v1/min-amount", q, &resp); err != nil {
		return nil, fmt.Errorf("min amount %s->%s: %w", from, to, err)
	}
	return &Limits{MinAmount: resp.MinAmount, MaxAmount: resp.MaxAmount}, nil
}

func (c *Client) Currencies(ctx context.Context) ([]Currency, error) {
	var resp currenciesResponse
	if err := c.get(ctx, "/v1/full-currencies", nil, &resp); err != nil {
		return nil, fmt.Errorf("full currencies: %w", err)
	}
	return resp.Currencies, nil
}

// EnabledCodes returns the gateway spelling of every enabled currency.
func (c *Client) EnabledCodes(ctx context.Context) ([]string, error) {
	all, err := c.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(all))
	for _, cur := range all {
		if cur.Enable && cur.Code != "" {
			codes = append(codes, strings.ToLower(cur.Code))
		}
	}
	return codes, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		return resp, nil
	})
	if err != nil {
		return unwrapExceeded(err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// unwrapExceeded surfaces the last attempt's error when retries ran out.
func unwrapExceeded(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	return err
}
