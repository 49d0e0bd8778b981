// Package rates quotes fiat amounts in crypto through the payment gateway,
// with a Redis cache in front and a static fallback table behind it.
package rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrUpstreamRateUnavailable = errors.New("upstream rate unavailable")

const (
	SourceGateway    = "gateway"
	SourceCache      = "cache"
	SourceFallback   = "fallback"
	SourceStableCoin = "stablecoin"
)

// Estimate is the quote for converting Amount of From into To.
type Estimate struct {
	From            string          `json:"currency_from"`
	To              string          `json:"currency_to"`
	Amount          decimal.Decimal `json:"amount_from"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	// Fallback is set when the quote came from the static table instead of
	// the gateway; such quotes are placeholders, not live rates.
	Fallback bool   `json:"fallback"`
	Source   string `json:"source"`
}

type Provider interface {
	Estimate(ctx context.Context, amount decimal.Decimal, from, to string) (*Estimate, error)
}
