package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/pricing"
)

const (
	LinkStatusActive   = "active"
	LinkStatusInactive = "inactive"
	LinkStatusExpired  = "expired"
)

type Merchant struct {
	ID                      string            `json:"id"`
	BusinessName            string            `json:"business_name"`
	Wallets                 map[string]string `json:"wallets"`
	WalletExtraIDs          map[string]string `json:"wallet_extra_ids,omitempty"`
	ChargeCustomerFee       bool              `json:"charge_customer_fee"`
	AutoConvertEnabled      bool              `json:"auto_convert_enabled"`
	PreferredPayoutCurrency string            `json:"preferred_payout_currency,omitempty"`
	TaxEnabled              bool              `json:"tax_enabled"`
	TaxRates                []pricing.TaxRate `json:"tax_rates"`
	CreatedAt               time.Time         `json:"created_at"`
}

// Defaults returns the merchant's fee and tax settings.
func (m *Merchant) Defaults() pricing.Defaults {
	return pricing.Defaults{
		ChargeCustomerFee:  m.ChargeCustomerFee,
		AutoConvertEnabled: m.AutoConvertEnabled,
		TaxEnabled:         m.TaxEnabled,
		TaxRates:           m.TaxRates,
	}
}

// AcceptedBases lists the currencies the merchant has a wallet for.
func (m *Merchant) AcceptedBases() []string {
	codes := make([]string, 0, len(m.Wallets))
	for code, addr := range m.Wallets {
		if addr != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// LinkMetadata is stored alongside a payment link as JSONB.
type LinkMetadata struct {
	FeeBreakdown            *pricing.MonetaryBreakdown `json:"fee_breakdown"`
	Wallets                 map[string]string          `json:"wallets"`
	WalletExtraIDs          map[string]string          `json:"wallet_extra_ids,omitempty"`
	GatewayCodes            map[string]string          `json:"gateway_codes"`
	ChargeCustomerFee       bool                       `json:"charge_customer_fee"`
	AutoConvertEnabled      bool                       `json:"auto_convert_enabled"`
	PreferredPayoutCurrency string                     `json:"preferred_payout_currency,omitempty"`
}

type PaymentLink struct {
	ID              string            `json:"id"`
	MerchantID      string            `json:"merchant_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	BaseAmount      decimal.Decimal   `json:"base_amount"`
	Currency        string            `json:"currency"`
	AcceptedCryptos []string          `json:"accepted_cryptos"`
	LinkID          string            `json:"link_id"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty"`
	MaxUses         *int              `json:"max_uses,omitempty"`
	Status          string            `json:"status"`
	FeePercentage   decimal.Decimal   `json:"fee_percentage"`
	TaxEnabled      bool              `json:"tax_enabled"`
	TaxRates        []pricing.TaxRate `json:"tax_rates"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	SubtotalWithTax decimal.Decimal   `json:"subtotal_with_tax"`
	Metadata        LinkMetadata      `json:"metadata"`
	IdempotencyKey  *string           `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
