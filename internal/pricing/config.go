package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// BaseFeePercentage is the gateway fee charged on every payment (0.5%).
	BaseFeePercentage = decimal.RequireFromString("0.005")
	// AutoConvertFeePercentage is added when the payout is auto-converted (0.5%).
	AutoConvertFeePercentage = decimal.RequireFromString("0.005")
)

// TaxRate is a configured tax line. Percentage is kept as the raw float the
// merchant entered so malformed values can be coerced or rejected by the
// calculator.
type TaxRate struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// FeeTaxConfig is the effective fee/tax configuration of one computation.
type FeeTaxConfig struct {
	ChargeCustomerFee  bool
	AutoConvertEnabled bool
	TaxEnabled         bool
	TaxRates           []TaxRate
}

// Defaults are the merchant-level settings a request can override.
type Defaults struct {
	ChargeCustomerFee  bool
	AutoConvertEnabled bool
	TaxEnabled         bool
	TaxRates           []TaxRate
}

// Overrides carries request-level settings. Nil fields fall back to the
// merchant defaults.
type Overrides struct {
	ChargeCustomerFee  *bool
	AutoConvertEnabled *bool
	TaxEnabled         *bool
	TaxRates           []TaxRate
}

// ResolveConfig merges request overrides over merchant defaults.
func ResolveConfig(d Defaults, o Overrides) FeeTaxConfig {
	cfg := FeeTaxConfig{
		ChargeCustomerFee:  d.ChargeCustomerFee,
		AutoConvertEnabled: d.AutoConvertEnabled,
		TaxEnabled:         d.TaxEnabled,
		TaxRates:           d.TaxRates,
	}
	if o.ChargeCustomerFee != nil {
		cfg.ChargeCustomerFee = *o.ChargeCustomerFee
	}
	if o.AutoConvertEnabled != nil {
		cfg.AutoConvertEnabled = *o.AutoConvertEnabled
	}
	if o.TaxEnabled != nil {
		cfg.TaxEnabled = *o.TaxEnabled
	}
	if o.TaxRates != nil {
		cfg.TaxRates = o.TaxRates
	}
	return cfg
}

// CoercePercentage turns a loosely typed percentage (JSON number, numeric
// string, nil) into a float. ok is false when the input was malformed; the
// returned value is then 0.
func CoercePercentage(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeTaxKey lowercases a tax label and replaces spaces with
// underscores: "Sales Tax" becomes "sales_tax".
func NormalizeTaxKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// SanitizeTaxRates returns a copy of rates with non-finite or negative
// percentages replaced by 0, matching what the permissive calculator
// charges. Used before persisting rates.
func SanitizeTaxRates(rates []TaxRate) []TaxRate {
	if rates == nil {
		return nil
	}
	out := make([]TaxRate, len(rates))
	for i, r := range rates {
		if math.IsNaN(r.Percentage) || math.IsInf(r.Percentage, 0) || r.Percentage < 0 {
			r.Percentage = 0
		}
		out[i] = r
	}
	return out
}

// LooseTaxRate is a tax rate as received from clients or stored settings,
// before its percentage has been coerced.
type LooseTaxRate struct {
	Label      string `json:"label"`
	Percentage any    `json:"percentage"`
}

// ParseTaxRates coerces loose rates. A malformed percentage becomes NaN so
// the calculator can apply its strict or permissive policy to it.
func ParseTaxRates(loose []LooseTaxRate) []TaxRate {
	if loose == nil {
		return nil
	}
	out := make([]TaxRate, len(loose))
	for i, l := range loose {
		pct, ok := CoercePercentage(l.Percentage)
		if !ok {
			pct = math.NaN()
		}
		out[i] = TaxRate{Label: l.Label, Percentage: pct}
	}
	return out
}
