package dto

import (
	"time"

	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
	"github.com/cryptrac/cryptrac-engine/internal/service"
)

// FeeTaxOverrides are the optional per-request fee and tax settings. Nil
// fields keep the merchant's defaults.
type FeeTaxOverrides struct {
	ChargeCustomerFee  *bool                  `json:"charge_customer_fee"`
	AutoConvertEnabled *bool                  `json:"auto_convert_enabled"`
	TaxEnabled         *bool                  `json:"tax_enabled"`
	TaxRates           []pricing.LooseTaxRate `json:"tax_rates"`
}

func (o FeeTaxOverrides) toPricing() pricing.Overrides {
	return pricing.Overrides{
		ChargeCustomerFee:  o.ChargeCustomerFee,
		AutoConvertEnabled: o.AutoConvertEnabled,
		TaxEnabled:         o.TaxEnabled,
		TaxRates:           pricing.ParseTaxRates(o.TaxRates),
	}
}

// Required fields are checked by the assembler so the error can name the
// missing field.
type CreatePaymentLinkRequest struct {
	MerchantID      string     `json:"merchant_id"`
	Title           string     `json:"title" binding:"max=200"`
	Description     string     `json:"description" binding:"max=2000"`
	Amount          *float64   `json:"amount"`
	Currency        string     `json:"currency" binding:"omitempty,len=3,alpha"`
	AcceptedCryptos []string   `json:"accepted_cryptos" binding:"max=50"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxUses         *int       `json:"max_uses" binding:"omitempty,min=1"`
	IdempotencyKey  string     `json:"idempotency_key" binding:"max=128"`
	FeeTaxOverrides
}

func (r *CreatePaymentLinkRequest) ToDomain() *paymentlink.Request {
	return &paymentlink.Request{
		MerchantID:      r.MerchantID,
		Title:           r.Title,
		Description:     r.Description,
		Amount:          r.Amount,
		Currency:        r.Currency,
		AcceptedCryptos: r.AcceptedCryptos,
		ExpiresAt:       r.ExpiresAt,
		MaxUses:         r.MaxUses,
		Overrides:       r.toPricing(),
		IdempotencyKey:  r.IdempotencyKey,
	}
}

type PreviewRequest struct {
	MerchantID string   `json:"merchant_id"`
	Amount     *float64 `json:"amount"`
	Currency   string   `json:"currency" binding:"omitempty,len=3,alpha"`
	Currencies []string `json:"currencies" binding:"max=50"`
	FeeTaxOverrides
}

func (r *PreviewRequest) ToDomain() *service.PreviewRequest {
	return &service.PreviewRequest{
		MerchantID: r.MerchantID,
		Amount:     r.Amount,
		Fiat:       r.Currency,
		Currencies: r.Currencies,
		Overrides:  r.toPricing(),
	}
}
