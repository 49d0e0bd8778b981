package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxEntry is one line of a TaxBreakdown.
type TaxEntry struct {
	Key    string
	Amount decimal.Decimal
}

// TaxBreakdown is an insertion-ordered mapping of normalized tax key to
// amount. It serializes as a JSON object whose key order matches the order
// the rates were configured in.
type TaxBreakdown struct {
	entries []TaxEntry
}

// Set stores amount under key. An existing key keeps its position and has
// its amount replaced.
func (b *TaxBreakdown) Set(key string, amount decimal.Decimal) {
	for i := range b.entries {
		if b.entries[i].Key == key {
			b.entries[i].Amount = amount
			return
		}
	}
	b.entries = append(b.entries, TaxEntry{Key: key, Amount: amount})
}

func (b TaxBreakdown) Get(key string) (decimal.Decimal, bool) {
	for _, e := range b.entries {
		if e.Key == key {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

func (b TaxBreakdown) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the breakdown lines in order.
func (b TaxBreakdown) Entries() []TaxEntry {
	out := make([]TaxEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b TaxBreakdown) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range b.entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

func (b TaxBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := e.Amount.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *TaxBreakdown) UnmarshalJSON(data []byte) error {
	b.entries = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tax breakdown: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tax breakdown: expected key, got %v", tok)
		}
		var amount decimal.Decimal
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("tax breakdown %q: %w", key, err)
		}
		b.Set(key, amount)
	}

	_, err = dec.Token()
	return err
}

// MonetaryBreakdown is the full result of a fee/tax computation. It is
// recomputed per request and only ever stored as a denormalized copy.
type MonetaryBreakdown struct {
	BaseAmount         decimal.Decimal `json:"base_amount"`
	TaxBreakdown       TaxBreakdown    `json:"tax_breakdown"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	SubtotalWithTax    decimal.Decimal `json:"subtotal_with_tax"`
	FeePercentageTotal decimal.Decimal `json:"fee_percentage_total"`
	FeeAmount          decimal.Decimal `json:"fee_amount"`
	CustomerPaysTotal  decimal.Decimal `json:"customer_pays_total"`
	MerchantReceives   decimal.Decimal `json:"merchant_receives"`
	ChargeCustomerFee  bool            `json:"charge_customer_fee"`
	AutoConvertEnabled bool            `json:"auto_convert_enabled"`
}

// FeePercentagePoints returns the total fee as percentage points (1.0 for 1%).
func (m *MonetaryBreakdown) FeePercentagePoints() decimal.Decimal {
	return m.FeePercentageTotal.Shift(2)
}
