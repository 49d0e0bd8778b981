package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
)

const (
	linkIDConstraint         = "payment_links_link_id_key"
	idempotencyKeyConstraint = "payment_links_idempotency_key"
)

const paymentLinkColumns = `id, merchant_id, title, COALESCE(description, ''), amount, base_amount, currency,
	accepted_cryptos, link_id, expires_at, max_uses, status, fee_percentage, tax_enabled,
	tax_rates, tax_amount, subtotal_with_tax, metadata, idempotency_key, created_at`

type PaymentLinkRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentLinkRepository(pool *pgxpool.Pool) *PaymentLinkRepository {
	return &PaymentLinkRepository{pool: pool}
}

func (r *PaymentLinkRepository) Insert(ctx context.Context, link *model.PaymentLink) error {
	taxRates, err := json.Marshal(link.TaxRates)
	if err != nil {
		return fmt.Errorf("marshal tax rates: %w", err)
	}
	metadata, err := json.Marshal(link.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var description *string
	if link.Description != "" {
		description = &link.Description
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO payment_links (merchant_id, title, description, amount, base_amount, currency,
			accepted_cryptos, link_id, expires_at, max_uses, status, fee_percentage, tax_enabled,
			tax_rates, tax_amount, subtotal_with_tax, metadata, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at`,
		link.MerchantID, link.Title, description, link.Amount, link.BaseAmount, link.Currency,
		link.AcceptedCryptos, link.LinkID, link.ExpiresAt, link.MaxUses, link.Status, link.FeePercentage,
		link.TaxEnabled, taxRates, link.TaxAmount, link.SubtotalWithTax, metadata, link.IdempotencyKey,
	).Scan(&link.ID, &link.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case linkIDConstraint:
			return fmt.Errorf("%w: %s", paymentlink.ErrStoreConflict, link.LinkID)
		case idempotencyKeyConstraint:
			return fmt.Errorf("%w: %s", paymentlink.ErrIdempotencyConflict, *link.IdempotencyKey)
		}
	}
	return err
}

func (r *PaymentLinkRepository) FindByIdempotencyKey(ctx context.Context, merchantID, key string) (*model.PaymentLink, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentLinkColumns+`
		FROM payment_links WHERE merchant_id = $1 AND idempotency_key = $2`, merchantID, key)

	link, err := scanPaymentLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by idempotency key: %w", err)
	}
	return link, nil
}

func (r *PaymentLinkRepository) ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]model.PaymentLink, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_links WHERE merchant_id = $1`, merchantID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count payment links: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentLinkColumns+`
		FROM payment_links WHERE merchant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query payment links: %w", err)
	}
	defer rows.Close()

	links := make([]model.PaymentLink, 0, limit)
	for rows.Next() {
		link, err := scanPaymentLink(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment link: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payment links: %w", err)
	}

	return links, total, nil
}

func scanPaymentLink(row pgx.Row) (*model.PaymentLink, error) {
	link := &model.PaymentLink{}
	var taxRates, metadata []byte
	err := row.Scan(&link.ID, &link.MerchantID, &link.Title, &link.Description, &link.Amount,
		&link.BaseAmount, &link.Currency, &link.AcceptedCryptos, &link.LinkID, &link.ExpiresAt,
		&link.MaxUses, &link.Status, &link.FeePercentage, &link.TaxEnabled, &taxRates,
		&link.TaxAmount, &link.SubtotalWithTax, &metadata, &link.IdempotencyKey, &link.CreatedAt)
	if err != nil {
		return nil, err
	}

	if link.TaxRates, err = decodeTaxRates(taxRates); err != nil {
		return nil, fmt.Errorf("decode tax rates: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &link.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return link, nil
}
