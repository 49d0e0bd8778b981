package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/paymenturi"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
	"github.com/cryptrac/cryptrac-engine/internal/rates"
)

const previewConcurrency = 4

// PreviewService prices a terminal charge and quotes it in each crypto the
// customer may pay with.
type PreviewService struct {
	merchants MerchantStore
	catalog   *CatalogService
	resolver  *currency.Resolver
	calc      *pricing.Calculator
	rates     rates.Provider
	uris      *paymenturi.Builder
}

func NewPreviewService(merchants MerchantStore, catalog *CatalogService, resolver *currency.Resolver, calc *pricing.Calculator, provider rates.Provider, uris *paymenturi.Builder) *PreviewService {
	return &PreviewService{
		merchants: merchants,
		catalog:   catalog,
		resolver:  resolver,
		calc:      calc,
		rates:     provider,
		uris:      uris,
	}
}

type PreviewRequest struct {
	MerchantID string
	Amount     *float64
	Fiat       string
	Currencies []string
	Overrides  pricing.Overrides
}

type Quote struct {
	Currency        string             `json:"currency"`
	GatewayCode     *string            `json:"gateway_code"`
	EstimatedAmount decimal.Decimal    `json:"estimated_amount"`
	MinAmount       decimal.Decimal    `json:"min_amount"`
	BelowMinimum    bool               `json:"below_minimum"`
	Fallback        bool               `json:"fallback"`
	Source          string             `json:"source,omitempty"`
	PaymentURI      *paymenturi.Result `json:"payment_uri,omitempty"`
	Error           string             `json:"error,omitempty"`
}

type Preview struct {
	MerchantID string                     `json:"merchant_id"`
	Fiat       string                     `json:"fiat_currency"`
	Breakdown  *pricing.MonetaryBreakdown `json:"breakdown"`
	Quotes     []Quote                    `json:"quotes"`
	// Degraded is set when any quote used the static fallback rates.
	Degraded bool `json:"degraded"`
}

func (s *PreviewService) Preview(ctx context.Context, req *PreviewRequest) (*Preview, error) {
	if req.MerchantID == "" {
		return nil, &paymentlink.FieldError{Field: "merchant_id"}
	}
	if req.Amount == nil {
		return nil, &paymentlink.FieldError{Field: "amount"}
	}

	merchant, err := s.merchants.Get(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}

	cfg := pricing.ResolveConfig(merchant.Defaults(), req.Overrides)
	breakdown, err := s.calc.Compute(*req.Amount, cfg)
	if err != nil {
		return nil, err
	}

	fiat := strings.ToUpper(strings.TrimSpace(req.Fiat))
	if fiat == "" {
		fiat = paymentlink.DefaultFiatCurrency
	}

	codes := normalizeCurrencies(req.Currencies)
	if len(codes) == 0 {
		codes = sortedWalletCodes(merchant)
	}

	enabled := s.catalog.Enabled(ctx)
	quotes := make([]Quote, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(previewConcurrency)
	for i, code := range codes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// per-currency failures are reported on the quote, not returned
			quotes[i] = s.quote(gctx, merchant, code, fiat, breakdown.CustomerPaysTotal, enabled)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Preview{
		MerchantID: merchant.ID,
		Fiat:       fiat,
		Breakdown:  breakdown,
		Quotes:     quotes,
	}
	for _, q := range quotes {
		if q.Fallback {
			out.Degraded = true
		}
	}
	return out, nil
}

func (s *PreviewService) quote(ctx context.Context, merchant *model.Merchant, code, fiat string, total decimal.Decimal, enabled currency.EnabledSet) Quote {
	entry := s.resolver.Entry(code, enabled)
	q := Quote{Currency: entry.Code, GatewayCode: entry.GatewayCode}
	if entry.GatewayCode == nil {
		q.Error = "currency is not supported by the payment gateway"
		return q
	}

	est, err := s.rates.Estimate(ctx, total, fiat, *entry.GatewayCode)
	if err != nil {
		q.Error = err.Error()
		return q
	}
	q.EstimatedAmount = est.EstimatedAmount
	q.MinAmount = est.MinAmount
	q.BelowMinimum = est.MinAmount.IsPositive() && est.EstimatedAmount.LessThan(est.MinAmount)
	q.Fallback = est.Fallback
	q.Source = est.Source

	wallets := upperWalletMap(merchant.Wallets)
	extraIDs := upperWalletMap(merchant.WalletExtraIDs)
	uri := s.uris.Build(paymenturi.Request{
		Currency: entry.Code,
		Address:  wallets[entry.Code],
		Amount:   est.EstimatedAmount,
		ExtraID:  extraIDs[entry.Code],
		Label:    merchant.BusinessName,
	})
	q.PaymentURI = &uri
	return q
}

func normalizeCurrencies(codes []string) []string {
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
