package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/paymenturi"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
	"github.com/cryptrac/cryptrac-engine/internal/rates"
)

const testMerchantID = "6f1c2c1e-3a52-4d0e-9a57-0c1f5b7e1d11"

type fakeMerchants struct {
	merchants map[string]*model.Merchant
}

func (f *fakeMerchants) Get(_ context.Context, id string) (*model.Merchant, error) {
	m, ok := f.merchants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", paymentlink.ErrMerchantNotFound, id)
	}
	return m, nil
}

type fakeLinks struct {
	mu        sync.Mutex
	links     []*model.PaymentLink
	conflicts int
	inserts   int
	insertErr error
	// staleLookups makes the next lookups miss, as if a concurrent request
	// had not stored its link yet.
	staleLookups int
}

func (f *fakeLinks) Insert(_ context.Context, link *model.PaymentLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("%w: %s", paymentlink.ErrStoreConflict, link.LinkID)
	}
	if link.IdempotencyKey != nil {
		for _, l := range f.links {
			if l.MerchantID == link.MerchantID && l.IdempotencyKey != nil && *l.IdempotencyKey == *link.IdempotencyKey {
				return fmt.Errorf("%w: %s", paymentlink.ErrIdempotencyConflict, *link.IdempotencyKey)
			}
		}
	}
	link.ID = uuid.NewString()
	link.CreatedAt = time.Now()
	f.links = append(f.links, link)
	return nil
}

func (f *fakeLinks) FindByIdempotencyKey(_ context.Context, merchantID, key string) (*model.PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleLookups > 0 {
		f.staleLookups--
		return nil, nil
	}
	for _, l := range f.links {
		if l.MerchantID == merchantID && l.IdempotencyKey != nil && *l.IdempotencyKey == key {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLinks) ListByMerchant(_ context.Context, merchantID string, limit, offset int) ([]model.PaymentLink, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.PaymentLink
	for _, l := range f.links {
		if l.MerchantID == merchantID {
			all = append(all, *l)
		}
	}
	total := len(all)
	if offset >= total {
		return []model.PaymentLink{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

type fakeCatalog struct {
	codes []string
	err   error
	calls int
}

func (f *fakeCatalog) EnabledCodes(context.Context) ([]string, error) {
	f.calls++
	return f.codes, f.err
}

// fixedRates quotes every currency at a fixed USD price.
type fixedRates struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  []string
}

func (f *fixedRates) Estimate(_ context.Context, amount decimal.Decimal, from, to string) (*rates.Estimate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, to)
	f.mu.Unlock()

	price, ok := f.prices[to]
	if !ok {
		return nil, errors.New("no rate for " + to)
	}
	return &rates.Estimate{
		From:            from,
		To:              to,
		Amount:          amount,
		EstimatedAmount: amount.DivRound(price, 8),
		MinAmount:       decimal.RequireFromString("0.0001"),
		Source:          rates.SourceGateway,
	}, nil
}

func testMerchant() *model.Merchant {
	return &model.Merchant{
		ID:           testMerchantID,
		BusinessName: "Corner Coffee",
		Wallets: map[string]string{
			"BTC":       "bc1qmerchant",
			"SOL":       "So1Merchant",
			"XRP":       "rMerchant",
			"USDTTRC20": "TMerchant",
		},
		WalletExtraIDs: map[string]string{"XRP": "123456"},
		TaxEnabled:     true,
		TaxRates:       []pricing.TaxRate{{Label: "Sales Tax", Percentage: 8}},
	}
}

func newFakeMerchants(ms ...*model.Merchant) *fakeMerchants {
	f := &fakeMerchants{merchants: make(map[string]*model.Merchant)}
	for _, m := range ms {
		f.merchants[m.ID] = m
	}
	return f
}

func testResolver() (*currency.Resolver, *currency.ExtraIDPolicy) {
	policy := currency.NewExtraIDPolicy(currency.DefaultExtraIDRules())
	return currency.NewResolver(currency.DefaultTables(), policy), policy
}

func testBuilder(policy *currency.ExtraIDPolicy) *paymenturi.Builder {
	return paymenturi.NewBuilder(paymenturi.DefaultSchemes(), policy)
}

func f64(v float64) *float64 { return &v }
