package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
)

type MerchantRepository struct {
	pool *pgxpool.Pool
}

func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// Get loads a merchant with its wallets. It returns an error wrapping
// paymentlink.ErrMerchantNotFound when no merchant has the id.
func (r *MerchantRepository) Get(ctx context.Context, id string) (*model.Merchant, error) {
	m := &model.Merchant{ID: id}
	var taxRates []byte
	err := r.pool.QueryRow(ctx,
		`SELECT business_name, charge_customer_fee, auto_convert_enabled,
			COALESCE(preferred_payout_currency, ''), tax_enabled, tax_rates, created_at
		FROM merchants WHERE id = $1`, id).
		Scan(&m.BusinessName, &m.ChargeCustomerFee, &m.AutoConvertEnabled,
			&m.PreferredPayoutCurrency, &m.TaxEnabled, &taxRates, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", paymentlink.ErrMerchantNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query merchant: %w", err)
	}

	m.TaxRates, err = decodeTaxRates(taxRates)
	if err != nil {
		return nil, fmt.Errorf("decode tax rates of merchant %s: %w", id, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT currency, address, COALESCE(extra_id, '')
		FROM merchant_wallets WHERE merchant_id = $1 ORDER BY currency`, id)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	m.Wallets = make(map[string]string)
	m.WalletExtraIDs = make(map[string]string)
	for rows.Next() {
		var currency, address, extraID string
		if err := rows.Scan(&currency, &address, &extraID); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		m.Wallets[currency] = address
		if extraID != "" {
			m.WalletExtraIDs[currency] = extraID
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}

	return m, nil
}

// decodeTaxRates reads the stored JSON tax rates, tolerating percentages
// saved as strings.
func decodeTaxRates(raw []byte) ([]pricing.TaxRate, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var loose []pricing.LooseTaxRate
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, err
	}
	return pricing.ParseTaxRates(loose), nil
}
