package paymentlink

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrMissingWalletAddress = errors.New("missing wallet address")
	ErrUnresolvableCurrency = errors.New("unresolvable currency")
	ErrMerchantNotFound     = errors.New("merchant not found")
	// ErrStoreConflict is returned by a RecordStore when the link id is
	// already taken.
	ErrStoreConflict = errors.New("payment link id already exists")
	// ErrIdempotencyConflict is returned by a RecordStore when the merchant
	// already has a link with the same idempotency key.
	ErrIdempotencyConflict = errors.New("idempotency key already used")
	ErrLinkIDExhausted     = errors.New("could not mint a unique payment link id")
)

type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *FieldError) Unwrap() error { return ErrMissingRequiredField }

// MissingWalletsError lists every accepted currency without a wallet.
type MissingWalletsError struct {
	Currencies []string
}

func (e *MissingWalletsError) Error() string {
	return "no wallet address configured for: " + strings.Join(e.Currencies, ", ")
}

func (e *MissingWalletsError) Unwrap() error { return ErrMissingWalletAddress }

type UnresolvedCurrenciesError struct {
	Currencies []string
}

func (e *UnresolvedCurrenciesError) Error() string {
	return "currencies not supported by the payment gateway: " + strings.Join(e.Currencies, ", ")
}

func (e *UnresolvedCurrenciesError) Unwrap() error { return ErrUnresolvableCurrency }
