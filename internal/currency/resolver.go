// Package currency maps merchant-facing currency codes to the codes the
// payment gateway understands, expands base wallet currencies into their
// stablecoin variants and holds the memo/destination-tag rules per chain.
package currency

import (
	"sort"
	"strings"
)

// Entry is one currency as shown to merchants and customers.
type Entry struct {
	Code            string  `json:"code"`
	GatewayCode     *string `json:"gateway_code"`
	RequiresExtraID bool    `json:"requires_extra_id"`
	NetworkBase     *string `json:"network_base"`
}

// EnabledSet is the set of gateway currency codes currently enabled,
// matched case-insensitively. Values keep the gateway's own spelling.
type EnabledSet map[string]string

func NewEnabledSet(codes ...string) EnabledSet {
	s := make(EnabledSet, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		s[strings.ToUpper(c)] = c
	}
	return s
}

func (s EnabledSet) lookup(code string) (string, bool) {
	v, ok := s[strings.ToUpper(code)]
	return v, ok
}

// Codes returns the gateway codes in sorted order.
func (s EnabledSet) Codes() []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type Resolver struct {
	tables      Tables
	policy      *ExtraIDPolicy
	variantBase map[string]string
}

func NewResolver(tables Tables, policy *ExtraIDPolicy) *Resolver {
	variantBase := make(map[string]string)
	for base, variants := range tables.StableCoins {
		for _, v := range variants {
			variantBase[strings.ToUpper(v)] = strings.ToUpper(base)
		}
	}
	return &Resolver{tables: tables, policy: policy, variantBase: variantBase}
}

// Resolve returns the gateway code for a merchant currency code. Lookup
// order: alias table, network-suffix construction, exact match. ok is false
// when the currency is not supported by the enabled set.
func (r *Resolver) Resolve(code string, enabled EnabledSet) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return "", false
	}

	for _, candidate := range r.tables.Aliases[upper] {
		if gw, ok := enabled.lookup(candidate); ok {
			return gw, true
		}
	}

	for _, suffix := range r.tables.NetworkSuffixes {
		if gw, ok := enabled.lookup(upper + suffix); ok {
			return gw, true
		}
	}

	if gw, ok := enabled.lookup(upper); ok {
		return gw, true
	}
	return "", false
}

// Entry builds the display entry for code, resolved against enabled.
func (r *Resolver) Entry(code string, enabled EnabledSet) Entry {
	upper := strings.ToUpper(strings.TrimSpace(code))
	e := Entry{
		Code:            upper,
		RequiresExtraID: r.policy != nil && r.policy.RequiresExtraID(upper),
	}
	if gw, ok := r.Resolve(upper, enabled); ok {
		e.GatewayCode = &gw
	}
	if base, ok := r.variantBase[upper]; ok {
		e.NetworkBase = &base
	}
	return e
}

// ResolveAll resolves every code and reports the ones that could not be
// resolved. Callers decide whether unresolved codes are fatal.
func (r *Resolver) ResolveAll(codes []string, enabled EnabledSet) ([]Entry, []string) {
	entries := make([]Entry, 0, len(codes))
	var unresolved []string
	for _, code := range codes {
		e := r.Entry(code, enabled)
		if e.GatewayCode == nil {
			unresolved = append(unresolved, e.Code)
		}
		entries = append(entries, e)
	}
	return entries, unresolved
}

// ExpandStableCoins returns the stablecoin variants of the given base
// currencies, in table order and without the bases themselves. Bases with no
// configured variants contribute nothing.
func (r *Resolver) ExpandStableCoins(bases []string) []string {
	baseSet := make(map[string]struct{}, len(bases))
	for _, b := range bases {
		baseSet[strings.ToUpper(b)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, b := range bases {
		for _, v := range r.tables.StableCoins[strings.ToUpper(b)] {
			v = strings.ToUpper(v)
			if _, isBase := baseSet[v]; isBase {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// AcceptedSet is the merchant's base currencies followed by their
// stablecoin variants, uppercased and de-duplicated.
func (r *Resolver) AcceptedSet(bases []string) []string {
	seen := make(map[string]struct{}, len(bases))
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		b = strings.ToUpper(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return append(out, r.ExpandStableCoins(out)...)
}

// NetworkBase reports the base currency a stablecoin variant belongs to.
func (r *Resolver) NetworkBase(code string) (string, bool) {
	base, ok := r.variantBase[strings.ToUpper(code)]
	return base, ok
}

// IsStableCoin reports whether code is a USD-pegged token. Stablecoins are
// quoted 1:1 against USD without a rate lookup.
func IsStableCoin(code string) bool {
	upper := strings.ToUpper(code)
	for _, p := range stableCoinPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}
