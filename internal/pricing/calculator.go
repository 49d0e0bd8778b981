// Package pricing computes tax, gateway fee and settlement amounts for a
// charge. It is the only place fee math happens; handlers and services call
// Calculator.Compute instead of recomputing inline.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("amount must be a positive, finite number")
	ErrInvalidTaxRate = errors.New("invalid tax rate")
)

// Calculator computes MonetaryBreakdowns. The zero value is the permissive
// calculator: malformed tax percentages count as 0. A Strict calculator
// rejects them with ErrInvalidTaxRate.
type Calculator struct {
	Strict bool
}

func NewCalculator(strict bool) *Calculator {
	return &Calculator{Strict: strict}
}

// Compute derives the tax, fee, customer total and merchant settlement for
// baseAmount under cfg.
func (c *Calculator) Compute(baseAmount float64, cfg FeeTaxConfig) (*MonetaryBreakdown, error) {
	if math.IsNaN(baseAmount) || math.IsInf(baseAmount, 0) || baseAmount <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, baseAmount)
	}
	return c.ComputeDecimal(decimal.NewFromFloat(baseAmount), cfg)
}

// ComputeDecimal is Compute for callers that already hold a decimal amount.
func (c *Calculator) ComputeDecimal(base decimal.Decimal, cfg FeeTaxConfig) (*MonetaryBreakdown, error) {
	if !base.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, base.String())
	}

	var taxes TaxBreakdown
	if cfg.TaxEnabled {
		for i, rate := range cfg.TaxRates {
			pct, err := c.percentage(rate)
			if err != nil {
				return nil, fmt.Errorf("tax rate %d (%q): %w", i, rate.Label, err)
			}
			taxes.Set(NormalizeTaxKey(rate.Label), base.Mul(pct).Shift(-2))
		}
	}

	taxAmount := taxes.Sum()
	subtotal := base.Add(taxAmount)

	feePct := BaseFeePercentage
	if cfg.AutoConvertEnabled {
		feePct = feePct.Add(AutoConvertFeePercentage)
	}
	fee := subtotal.Mul(feePct)

	out := &MonetaryBreakdown{
		BaseAmount:         base,
		TaxBreakdown:       taxes,
		TaxAmount:          taxAmount,
		SubtotalWithTax:    subtotal,
		FeePercentageTotal: feePct,
		FeeAmount:          fee,
		ChargeCustomerFee:  cfg.ChargeCustomerFee,
		AutoConvertEnabled: cfg.AutoConvertEnabled,
	}
	if cfg.ChargeCustomerFee {
		out.CustomerPaysTotal = subtotal.Add(fee)
		out.MerchantReceives = subtotal
	} else {
		out.CustomerPaysTotal = subtotal
		out.MerchantReceives = subtotal.Sub(fee)
	}
	return out, nil
}

func (c *Calculator) percentage(rate TaxRate) (decimal.Decimal, error) {
	p := rate.Percentage
	malformed := math.IsNaN(p) || math.IsInf(p, 0) || p < 0
	if c.Strict && (malformed || p > 100) {
		return decimal.Zero, fmt.Errorf("%w: percentage %v outside [0,100]", ErrInvalidTaxRate, p)
	}
	if malformed {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(p), nil
}
