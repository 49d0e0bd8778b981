package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
	"github.com/cryptrac/cryptrac-engine/internal/paymenturi"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
)

// URICheckService renders the payment URI of every wallet a merchant has,
// so wallet and extra ID configuration problems show up before customers
// scan a QR code.
type URICheckService struct {
	merchants MerchantStore
	uris      *paymenturi.Builder
	policy    *currency.ExtraIDPolicy
}

func NewURICheckService(merchants MerchantStore, uris *paymenturi.Builder, policy *currency.ExtraIDPolicy) *URICheckService {
	return &URICheckService{merchants: merchants, uris: uris, policy: policy}
}

type URICheckResult struct {
	Currency        string `json:"currency"`
	RequiresExtraID bool   `json:"requires_extra_id"`
	ExtraIDLabel    string `json:"extra_id_label,omitempty"`
	paymenturi.Result
}

type URICheck struct {
	MerchantID string           `json:"merchant_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Results    []URICheckResult `json:"results"`
	IssueCount int              `json:"issue_count"`
}

func (s *URICheckService) Check(ctx context.Context, merchantID string, amount decimal.Decimal) (*URICheck, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", pricing.ErrInvalidAmount, amount.String())
	}

	merchant, err := s.merchants.Get(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	wallets := upperWalletMap(merchant.Wallets)
	extraIDs := upperWalletMap(merchant.WalletExtraIDs)
	codes := sortedWalletCodes(merchant)

	out := &URICheck{
		MerchantID: merchant.ID,
		Amount:     amount,
		Results:    make([]URICheckResult, 0, len(codes)),
	}
	for _, code := range codes {
		res := URICheckResult{
			Currency:        code,
			RequiresExtraID: s.policy.RequiresExtraID(code),
			Result: s.uris.Build(paymenturi.Request{
				Currency: code,
				Address:  wallets[code],
				Amount:   amount,
				ExtraID:  extraIDs[code],
				Label:    merchant.BusinessName,
			}),
		}
		if res.RequiresExtraID {
			res.ExtraIDLabel = s.policy.Label(code)
		}
		out.IssueCount += len(res.Issues)
		out.Results = append(out.Results, res)
	}
	return out, nil
}
