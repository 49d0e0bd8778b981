package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DemoMerchantID is the merchant created by SeedData.
var DemoMerchantID = uuid.MustParse("6f1c2c1e-3a52-4d0e-9a57-0c1f5b7e1d11")

type seedWallet struct {
	Currency string
	Address  string
	ExtraID  string
}

var demoWallets = []seedWallet{
	{Currency: "BTC", Address: "bc1qdemo0merchant0wallet0address0xyz"},
	{Currency: "ETH", Address: "0x52908400098527886E0F7030069857D2E4169EE7"},
	{Currency: "SOL", Address: "7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV"},
	{Currency: "TRX", Address: "TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL"},
	{Currency: "XRP", Address: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe", ExtraID: "123456"},
	{Currency: "XLM", Address: "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H", ExtraID: "cryptrac-demo"},
	{Currency: "USDTTRC20", Address: "TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL"},
	{Currency: "USDCSOL", Address: "7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV"},
}

var demoTaxRates = []map[string]any{
	{"label": "Sales Tax", "percentage": 8},
	{"label": "City Levy", "percentage": 0.5},
}

// SeedData inserts the demo merchant and its wallets once.
func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM merchants WHERE id = $1", DemoMerchantID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	taxRates, err := json.Marshal(demoTaxRates)
	if err != nil {
		return fmt.Errorf("marshal tax rates: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO merchants (id, business_name, charge_customer_fee, auto_convert_enabled, preferred_payout_currency, tax_enabled, tax_rates)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		DemoMerchantID, "Cryptrac Demo Store", false, false, "USDTTRC20", true, taxRates,
	)
	if err != nil {
		return fmt.Errorf("insert demo merchant: %w", err)
	}

	for _, w := range demoWallets {
		var extraID *string
		if w.ExtraID != "" {
			extraID = &w.ExtraID
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO merchant_wallets (merchant_id, currency, address, extra_id) VALUES ($1, $2, $3, $4)`,
			DemoMerchantID, w.Currency, w.Address, extraID,
		); err != nil {
			return fmt.Errorf("insert wallet %s: %w", w.Currency, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	log.Info().
		Str("merchant_id", DemoMerchantID.String()).
		Int("wallets", len(demoWallets)).
		Msg("seed data generation complete")
	return nil
}
