package dto

import (
	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
)

type PaymentLinkResponse struct {
	model.PaymentLink
	PaymentURL string `json:"payment_url"`
}

type CreatePaymentLinkResponse struct {
	PaymentLink PaymentLinkResponse        `json:"payment_link"`
	Breakdown   *pricing.MonetaryBreakdown `json:"breakdown"`
	Replayed    bool                       `json:"replayed,omitempty"`
}

type PaymentLinkListResponse struct {
	Data       []PaymentLinkResponse `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

type ValidationError struct {
	Index   int    `json:"index,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorListResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}
