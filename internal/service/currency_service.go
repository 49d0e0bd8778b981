package service

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cryptrac/cryptrac-engine/internal/currency"
	"github.com/cryptrac/cryptrac-engine/internal/model"
)

type CurrencyService struct {
	merchants MerchantStore
	catalog   *CatalogService
	resolver  *currency.Resolver
	policy    *currency.ExtraIDPolicy
}

func NewCurrencyService(merchants MerchantStore, catalog *CatalogService, resolver *currency.Resolver, policy *currency.ExtraIDPolicy) *CurrencyService {
	return &CurrencyService{merchants: merchants, catalog: catalog, resolver: resolver, policy: policy}
}

type CurrencyInfo struct {
	currency.Entry
	HasWallet    bool   `json:"has_wallet"`
	ExtraIDLabel string `json:"extra_id_label,omitempty"`
}

type CurrencyListing struct {
	MerchantID string         `json:"merchant_id"`
	Currencies []CurrencyInfo `json:"currencies"`
	// Unresolved lists accepted currencies the gateway does not support.
	// They are reported, not treated as an error.
	Unresolved []string `json:"unresolved"`
}

// List returns the merchant's accepted currencies: every wallet currency
// plus the stablecoin variants of its base chains, resolved against the
// gateway catalog.
func (s *CurrencyService) List(ctx context.Context, merchantID string) (*CurrencyListing, error) {
	var (
		merchant *model.Merchant
		enabled  currency.EnabledSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		merchant, err = s.merchants.Get(gctx, merchantID)
		return err
	})
	g.Go(func() error {
		enabled = s.catalog.Enabled(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bases := sortedWalletCodes(merchant)
	accepted := s.resolver.AcceptedSet(bases)
	entries, unresolved := s.resolver.ResolveAll(accepted, enabled)

	wallets := upperWalletMap(merchant.Wallets)
	out := &CurrencyListing{
		MerchantID: merchant.ID,
		Currencies: make([]CurrencyInfo, 0, len(entries)),
		Unresolved: unresolved,
	}
	if out.Unresolved == nil {
		out.Unresolved = []string{}
	}
	for _, e := range entries {
		info := CurrencyInfo{Entry: e, HasWallet: wallets[e.Code] != ""}
		if e.RequiresExtraID {
			info.ExtraIDLabel = s.policy.Label(e.Code)
		}
		out.Currencies = append(out.Currencies, info)
	}

	if len(unresolved) > 0 {
		log.Warn().
			Str("merchant_id", merchant.ID).
			Strs("currencies", unresolved).
			Msg("accepted currencies not supported by the gateway")
	}
	return out, nil
}

func sortedWalletCodes(m *model.Merchant) []string {
	codes := m.AcceptedBases()
	for i, c := range codes {
		codes[i] = strings.ToUpper(c)
	}
	sort.Strings(codes)
	return codes
}

func upperWalletMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = strings.TrimSpace(v)
	}
	return out
}
