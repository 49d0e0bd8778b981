package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
	"github.com/cryptrac/cryptrac-engine/internal/rates"
)

type ErrorResponse struct {
	Error                string   `json:"error"`
	Details              string   `json:"details,omitempty"`
	Field                string   `json:"field,omitempty"`
	MissingWallets       []string `json:"missing_wallets,omitempty"`
	UnresolvedCurrencies []string `json:"unresolved_currencies,omitempty"`
}

// MapError turns a service error into an HTTP status and body. Validation
// errors carry enough detail for the caller to fix the request.
func MapError(err error) (int, ErrorResponse) {
	var (
		fieldErr      *paymentlink.FieldError
		walletsErr    *paymentlink.MissingWalletsError
		unresolvedErr *paymentlink.UnresolvedCurrenciesError
	)

	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, ErrorResponse{Error: fieldErr.Error(), Field: fieldErr.Field}
	case errors.As(err, &walletsErr):
		return http.StatusBadRequest, ErrorResponse{Error: walletsErr.Error(), MissingWallets: walletsErr.Currencies}
	case errors.As(err, &unresolvedErr):
		return http.StatusBadRequest, ErrorResponse{Error: unresolvedErr.Error(), UnresolvedCurrencies: unresolvedErr.Currencies}
	case errors.Is(err, pricing.ErrInvalidAmount):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "amount"}
	case errors.Is(err, pricing.ErrInvalidTaxRate):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "tax_rates"}
	case errors.Is(err, paymentlink.ErrIdempotencyConflict):
		return http.StatusConflict, ErrorResponse{Error: "idempotency key already used"}
	case errors.Is(err, paymentlink.ErrMerchantNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "merchant not found"}
	case errors.Is(err, rates.ErrUpstreamRateUnavailable):
		log.Warn().Err(err).Msg("no rate available")
		return http.StatusBadGateway, ErrorResponse{Error: "exchange rate unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"}
	case errors.Is(err, paymentlink.ErrLinkIDExhausted):
		log.Error().Err(err).Msg("payment link id space exhausted")
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}

	return MapDBError(err)
}

func MapDBError(err error) (int, ErrorResponse) {
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23503": // foreign_key_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "referenced resource does not exist",
				Details: pgErr.Detail,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.Detail,
			}
		case "22P02": // invalid_text_representation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "malformed identifier",
				Details: pgErr.Message,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
