package service

import (
	"context"

	"github.com/cryptrac/cryptrac-engine/internal/model"
)

// MerchantStore loads merchants with their wallets.
type MerchantStore interface {
	Get(ctx context.Context, id string) (*model.Merchant, error)
}

// GatewayCatalog lists the currency codes the payment gateway has enabled.
type GatewayCatalog interface {
	EnabledCodes(ctx context.Context) ([]string, error)
}
