// Package paymenturi renders chain-specific payment URIs for QR codes and
// wallet deep links.
package paymenturi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
)

// PlaceholderAddress is rendered when no wallet address is configured so the
// result is still a syntactically valid URI.
const PlaceholderAddress = "ADDRESS"

type Request struct {
	Currency string
	Address  string
	Amount   decimal.Decimal
	ExtraID  string
	Label    string
	Message  string
}

type Result struct {
	URI             string   `json:"uri"`
	Scheme          string   `json:"scheme"`
	Address         string   `json:"address"`
	IncludesAmount  bool     `json:"includes_amount"`
	IncludesExtraID bool     `json:"includes_extra_id"`
	Issues          []string `json:"issues"`
}

type Builder struct {
	schemes map[string]Scheme
	policy  *currency.ExtraIDPolicy
}

func NewBuilder(schemes map[string]Scheme, policy *currency.ExtraIDPolicy) *Builder {
	normalized := make(map[string]Scheme, len(schemes))
	for code, s := range schemes {
		normalized[strings.ToUpper(code)] = s
	}
	return &Builder{schemes: normalized, policy: policy}
}

// Build renders the payment URI for req. It never fails: a missing address
// is replaced by PlaceholderAddress and problems are reported in Issues.
func (b *Builder) Build(req Request) Result {
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	address := strings.TrimSpace(req.Address)
	extraID := strings.TrimSpace(req.ExtraID)

	res := Result{Issues: []string{}}
	if address == "" {
		address = PlaceholderAddress
		res.Issues = append(res.Issues, "no wallet address configured, showing placeholder")
	}
	res.Address = address

	scheme, known := lookupScheme(b.schemes, code)
	if !known {
		scheme = Scheme{Name: strings.ToLower(code), style: styleAddressOnly}
	}
	res.Scheme = scheme.Name

	withAmount := scheme.supportsAmount() && req.Amount.IsPositive()
	withExtraID := scheme.supportsExtraID() && extraID != ""

	q := &query{}
	switch scheme.style {
	case styleBIP21:
		if withAmount {
			q.add("amount", formatAmount(req.Amount))
		}
		q.add("label", req.Label)
		q.add("message", req.Message)
		res.URI = scheme.Name + ":" + address + q.encode()

	case styleEVM:
		target := address
		if scheme.ChainID != 0 && scheme.ChainID != 1 {
			target = fmt.Sprintf("%s@%d", address, scheme.ChainID)
		}
		if withAmount {
			q.add("value", baseUnits(req.Amount, scheme.Decimals))
		}
		res.URI = scheme.Name + ":" + target + q.encode()

	case styleSolana:
		if withAmount {
			q.add("amount", formatAmount(req.Amount))
			if scheme.Mint != "" {
				q.add("spl-token", scheme.Mint)
			}
		}
		q.add("label", req.Label)
		q.add("message", req.Message)
		if withExtraID {
			q.add("memo", extraID)
		}
		res.URI = scheme.Name + ":" + address + q.encode()

	case styleTron, styleCardano:
		if withAmount {
			q.add("amount", formatAmount(req.Amount))
		}
		res.URI = scheme.Name + ":" + address + q.encode()

	case styleXRP:
		if withAmount {
			q.add("amount", formatAmount(req.Amount))
		}
		if withExtraID {
			q.add("dt", extraID)
		}
		res.URI = scheme.Name + ":" + address + q.encode()

	case styleStellar:
		q.add("destination", address)
		if withAmount {
			q.add("amount", formatAmount(req.Amount))
		}
		if withExtraID {
			q.add("memo", extraID)
			q.add("memo_type", "MEMO_TEXT")
		}
		res.URI = scheme.Name + ":pay" + q.encode()

	case styleHedera:
		if withAmount {
			q.add("amount", formatAmount(req.Amount))
		}
		if withExtraID {
			q.add("memo", extraID)
		}
		res.URI = scheme.Name + ":" + address + q.encode()

	case styleTON:
		if withAmount {
			q.add("amount", baseUnits(req.Amount, scheme.Decimals))
		}
		if withExtraID {
			q.add("text", extraID)
		}
		res.URI = scheme.Name + "://transfer/" + address + q.encode()

	case styleAlgorand:
		if withAmount {
			q.add("amount", baseUnits(req.Amount, scheme.Decimals))
		}
		if withExtraID {
			q.add("note", extraID)
		}
		res.URI = scheme.Name + "://" + address + q.encode()

	default:
		res.URI = scheme.Name + ":" + address
	}

	res.IncludesAmount = withAmount
	res.IncludesExtraID = withExtraID
	res.Issues = append(res.Issues, b.extraIDIssues(code, extraID, res)...)
	return res
}

func (b *Builder) extraIDIssues(code, extraID string, res Result) []string {
	if b.policy == nil || !b.policy.RequiresExtraID(code) {
		return nil
	}
	label := b.policy.Label(code)
	var issues []string
	switch {
	case extraID == "":
		issues = append(issues, fmt.Sprintf("%s is required for %s but none is configured", label, code))
	case !res.IncludesExtraID:
		issues = append(issues, fmt.Sprintf("%s could not be embedded in the %s URI, customer must enter it manually", label, res.Scheme))
	}
	if extraID != "" && !b.policy.Validate(code, extraID) {
		issues = append(issues, fmt.Sprintf("%s %q does not match the expected format", label, extraID))
	}
	return issues
}

// query keeps parameters in insertion order so rendered URIs are stable.
type query struct {
	keys   []string
	values []string
}

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	q.keys = append(q.keys, key)
	q.values = append(q.values, value)
}

func (q *query) encode() string {
	if len(q.keys) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, k := range q.keys {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(escape(q.values[i]))
	}
	return sb.String()
}

// escape percent-encodes a query value, using %20 for spaces as BIP-21
// wallets expect.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatAmount(amount decimal.Decimal) string {
	return amount.String()
}

// baseUnits converts a whole-coin amount to the chain's smallest unit
// (wei, nanoton, microalgo), dropping sub-unit dust.
func baseUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(decimals).Truncate(0).String()
}
