package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
)

const maxLinkIDAttempts = 3

type PaymentLinkService struct {
	merchants MerchantStore
	links     paymentlink.RecordStore
	catalog   *CatalogService
	assembler *paymentlink.Assembler
}

func NewPaymentLinkService(merchants MerchantStore, links paymentlink.RecordStore, catalog *CatalogService, assembler *paymentlink.Assembler) *PaymentLinkService {
	return &PaymentLinkService{merchants: merchants, links: links, catalog: catalog, assembler: assembler}
}

type CreatedLink struct {
	Link       *model.PaymentLink
	PaymentURL string
	Breakdown  *pricing.MonetaryBreakdown
	// Replayed is set when an earlier link with the same idempotency key
	// was returned instead of creating a new one.
	Replayed bool
}

func (s *PaymentLinkService) Create(ctx context.Context, req *paymentlink.Request) (*CreatedLink, error) {
	if req.MerchantID == "" {
		return nil, &paymentlink.FieldError{Field: "merchant_id"}
	}

	merchant, err := s.merchants.Get(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		existing, err := s.replay(ctx, req.MerchantID, key)
		if err != nil || existing != nil {
			return existing, err
		}
	}

	assembled, err := s.assembler.Assemble(req, merchant, s.catalog.Enabled(ctx))
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxLinkIDAttempts; attempt++ {
		err = s.links.Insert(ctx, assembled.Record)
		if err == nil {
			log.Info().
				Str("merchant_id", merchant.ID).
				Str("link_id", assembled.Record.LinkID).
				Str("amount", assembled.Record.Amount.String()).
				Msg("payment link created")
			return &CreatedLink{
				Link:       assembled.Record,
				PaymentURL: assembled.PaymentURL,
				Breakdown:  assembled.Breakdown,
			}, nil
		}
		if errors.Is(err, paymentlink.ErrIdempotencyConflict) {
			// a concurrent request with the same key stored its link first
			return s.replayAfterConflict(ctx, req.MerchantID, *assembled.Record.IdempotencyKey)
		}
		if !errors.Is(err, paymentlink.ErrStoreConflict) {
			return nil, fmt.Errorf("insert payment link: %w", err)
		}

		log.Warn().
			Int("attempt", attempt).
			Str("link_id", assembled.Record.LinkID).
			Msg("payment link id collision")
		if attempt == maxLinkIDAttempts {
			break
		}
		if err := s.assembler.Remint(assembled); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", paymentlink.ErrLinkIDExhausted, maxLinkIDAttempts)
}

// replay returns the link stored under key, or nil when there is none.
func (s *PaymentLinkService) replay(ctx context.Context, merchantID, key string) (*CreatedLink, error) {
	existing, err := s.links.FindByIdempotencyKey(ctx, merchantID, key)
	if err != nil || existing == nil {
		return nil, err
	}
	return &CreatedLink{
		Link:       existing,
		PaymentURL: s.assembler.PaymentURL(existing.LinkID),
		Breakdown:  existing.Metadata.FeeBreakdown,
		Replayed:   true,
	}, nil
}

func (s *PaymentLinkService) replayAfterConflict(ctx context.Context, merchantID, key string) (*CreatedLink, error) {
	out, err := s.replay(ctx, merchantID, key)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s not found after conflict", paymentlink.ErrIdempotencyConflict, key)
	}
	log.Info().
		Str("merchant_id", merchantID).
		Str("link_id", out.Link.LinkID).
		Msg("concurrent idempotent request replayed")
	return out, nil
}

func (s *PaymentLinkService) List(ctx context.Context, merchantID string, limit, offset int) ([]model.PaymentLink, int, error) {
	if _, err := s.merchants.Get(ctx, merchantID); err != nil {
		return nil, 0, err
	}
	return s.links.ListByMerchant(ctx, merchantID, limit, offset)
}

// PaymentURL composes the customer-facing URL of a stored link.
func (s *PaymentLinkService) PaymentURL(linkID string) string {
	return s.assembler.PaymentURL(linkID)
}
