package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
)

const DefaultTimeout = 8 * time.Second

// DefaultFallbackUSD holds illustrative USD prices used only when the
// gateway cannot be reached. They are not live rates; every quote built
// from them is marked Fallback.
func DefaultFallbackUSD() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"BTC":   decimal.NewFromInt(45000),
		"ETH":   decimal.NewFromInt(2800),
		"LTC":   decimal.NewFromInt(70),
		"SOL":   decimal.NewFromInt(100),
		"BNB":   decimal.NewFromInt(300),
		"MATIC": decimal.RequireFromString("0.8"),
		"ADA":   decimal.RequireFromString("0.5"),
		"DOT":   decimal.NewFromInt(7),
		"TRX":   decimal.RequireFromString("0.1"),
		"AVAX":  decimal.NewFromInt(35),
	}
}

// Fallback wraps a Provider with a deadline, a stablecoin shortcut and a
// static rate table used when the wrapped provider fails.
type Fallback struct {
	next    Provider
	usd     map[string]decimal.Decimal
	timeout time.Duration
}

func NewFallback(next Provider, usd map[string]decimal.Decimal, timeout time.Duration) *Fallback {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	normalized := make(map[string]decimal.Decimal, len(usd))
	for code, price := range usd {
		normalized[strings.ToUpper(code)] = price
	}
	return &Fallback{next: next, usd: normalized, timeout: timeout}
}

func (f *Fallback) Estimate(ctx context.Context, amount decimal.Decimal, from, to string) (*Estimate, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	if isUSD(from) && currency.IsStableCoin(to) {
		return &Estimate{
			From:            from,
			To:              to,
			Amount:          amount,
			EstimatedAmount: amount,
			Source:          SourceStableCoin,
		}, nil
	}

	if f.next != nil {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		est, err := f.next.Estimate(callCtx, amount, from, to)
		cancel()
		if err == nil {
			return est, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).
			Str("from", from).
			Str("to", to).
			Msg("rate provider failed, using fallback table")
	}

	est, err := f.static(amount, from, to)
	if err != nil {
		return nil, err
	}
	return est, nil
}

func (f *Fallback) static(amount decimal.Decimal, from, to string) (*Estimate, error) {
	fromUSD, ok := f.priceUSD(from)
	if !ok {
		return nil, fmt.Errorf("%w: no fallback price for %s", ErrUpstreamRateUnavailable, from)
	}
	toUSD, ok := f.priceUSD(to)
	if !ok {
		return nil, fmt.Errorf("%w: no fallback price for %s", ErrUpstreamRateUnavailable, to)
	}

	return &Estimate{
		From:            from,
		To:              to,
		Amount:          amount,
		EstimatedAmount: amount.Mul(fromUSD).DivRound(toUSD, 8),
		Fallback:        true,
		Source:          SourceFallback,
	}, nil
}

// priceUSD finds the fallback price of code, matching network-suffixed
// gateway codes (BNBBSC, MATICMAINNET) by their longest known prefix.
func (f *Fallback) priceUSD(code string) (decimal.Decimal, bool) {
	if isUSD(code) || currency.IsStableCoin(code) {
		return decimal.NewFromInt(1), true
	}
	if p, ok := f.usd[code]; ok {
		return p, true
	}
	best := ""
	for base := range f.usd {
		if strings.HasPrefix(code, base) && len(base) > len(best) {
			best = base
		}
	}
	if best == "" {
		return decimal.Zero, false
	}
	return f.usd[best], true
}

func isUSD(code string) bool {
	return strings.EqualFold(code, "USD")
}
