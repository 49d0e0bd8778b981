// Package paymentlink turns a payment link creation request into a record
// ready for storage, its customer-facing URL and its fee breakdown.
// Persistence is left to a RecordStore.
package paymentlink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
)

const DefaultFiatCurrency = "USD"

type Request struct {
	MerchantID      string
	Title           string
	Description     string
	Amount          *float64
	Currency        string
	AcceptedCryptos []string
	ExpiresAt       *time.Time
	MaxUses         *int
	Overrides       pricing.Overrides
	IdempotencyKey  string
}

type Assembled struct {
	Record     *model.PaymentLink
	PaymentURL string
	Breakdown  *pricing.MonetaryBreakdown
}

type RecordStore interface {
	// Insert stores link and fills ID and CreatedAt. It returns an error
	// wrapping ErrStoreConflict when link.LinkID is taken, and one wrapping
	// ErrIdempotencyConflict when the idempotency key is.
	Insert(ctx context.Context, link *model.PaymentLink) error
	// FindByIdempotencyKey returns nil, nil when no link carries the key.
	FindByIdempotencyKey(ctx context.Context, merchantID, key string) (*model.PaymentLink, error)
	ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]model.PaymentLink, int, error)
}

type Assembler struct {
	calc     *pricing.Calculator
	resolver *currency.Resolver
	origin   string
	mint     func() (string, error)
}

func NewAssembler(calc *pricing.Calculator, resolver *currency.Resolver, publicOrigin string) *Assembler {
	return &Assembler{
		calc:     calc,
		resolver: resolver,
		origin:   strings.TrimRight(publicOrigin, "/"),
		mint:     NewLinkID,
	}
}

func (a *Assembler) PaymentURL(linkID string) string {
	return a.origin + "/pay/" + linkID
}

// Assemble validates req against merchant and builds the record. enabled is
// the gateway catalog every accepted currency must resolve against.
func (a *Assembler) Assemble(req *Request, merchant *model.Merchant, enabled currency.EnabledSet) (*Assembled, error) {
	if err := checkRequired(req); err != nil {
		return nil, err
	}

	accepted := normalizeCodes(req.AcceptedCryptos)
	wallets := upperKeys(merchant.Wallets)

	var missing []string
	for _, code := range accepted {
		if strings.TrimSpace(wallets[code]) == "" {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingWalletsError{Currencies: missing}
	}

	entries, unresolved := a.resolver.ResolveAll(accepted, enabled)
	if len(unresolved) > 0 {
		return nil, &UnresolvedCurrenciesError{Currencies: unresolved}
	}

	cfg := pricing.ResolveConfig(merchant.Defaults(), req.Overrides)
	breakdown, err := a.calc.Compute(*req.Amount, cfg)
	if err != nil {
		return nil, err
	}

	linkID, err := a.mint()
	if err != nil {
		return nil, fmt.Errorf("mint link id: %w", err)
	}

	extraIDs := upperKeys(merchant.WalletExtraIDs)
	meta := model.LinkMetadata{
		FeeBreakdown:            breakdown,
		Wallets:                 make(map[string]string, len(accepted)),
		GatewayCodes:            make(map[string]string, len(entries)),
		ChargeCustomerFee:       cfg.ChargeCustomerFee,
		AutoConvertEnabled:      cfg.AutoConvertEnabled,
		PreferredPayoutCurrency: merchant.PreferredPayoutCurrency,
	}
	for _, e := range entries {
		meta.Wallets[e.Code] = strings.TrimSpace(wallets[e.Code])
		if e.GatewayCode != nil {
			meta.GatewayCodes[e.Code] = *e.GatewayCode
		}
		if id := extraIDs[e.Code]; id != "" && e.RequiresExtraID {
			if meta.WalletExtraIDs == nil {
				meta.WalletExtraIDs = make(map[string]string)
			}
			meta.WalletExtraIDs[e.Code] = id
		}
	}

	fiat := strings.ToUpper(strings.TrimSpace(req.Currency))
	if fiat == "" {
		fiat = DefaultFiatCurrency
	}

	record := &model.PaymentLink{
		MerchantID:      req.MerchantID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Amount:          breakdown.SubtotalWithTax,
		BaseAmount:      breakdown.BaseAmount,
		Currency:        fiat,
		AcceptedCryptos: accepted,
		LinkID:          linkID,
		ExpiresAt:       req.ExpiresAt,
		MaxUses:         req.MaxUses,
		Status:          model.LinkStatusActive,
		FeePercentage:   breakdown.FeePercentageTotal,
		TaxEnabled:      cfg.TaxEnabled,
		TaxRates:        pricing.SanitizeTaxRates(cfg.TaxRates),
		TaxAmount:       breakdown.TaxAmount,
		SubtotalWithTax: breakdown.SubtotalWithTax,
		Metadata:        meta,
	}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		record.IdempotencyKey = &key
	}
	if record.TaxRates == nil {
		record.TaxRates = []pricing.TaxRate{}
	}

	return &Assembled{
		Record:     record,
		PaymentURL: a.PaymentURL(linkID),
		Breakdown:  breakdown,
	}, nil
}

// Remint replaces the link id of as after a store conflict.
func (a *Assembler) Remint(as *Assembled) error {
	linkID, err := a.mint()
	if err != nil {
		return fmt.Errorf("mint link id: %w", err)
	}
	as.Record.LinkID = linkID
	as.PaymentURL = a.PaymentURL(linkID)
	return nil
}

func checkRequired(req *Request) error {
	switch {
	case strings.TrimSpace(req.MerchantID) == "":
		return &FieldError{Field: "merchant_id"}
	case strings.TrimSpace(req.Title) == "":
		return &FieldError{Field: "title"}
	case req.Amount == nil:
		return &FieldError{Field: "amount"}
	case len(normalizeCodes(req.AcceptedCryptos)) == 0:
		return &FieldError{Field: "accepted_cryptos"}
	}
	return nil
}

// normalizeCodes uppercases, trims and de-duplicates codes, keeping the
// first occurrence of each.
func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func upperKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}
