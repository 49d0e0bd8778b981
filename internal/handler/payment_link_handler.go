package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cryptrac/cryptrac-engine/internal/dto"
	"github.com/cryptrac/cryptrac-engine/internal/model"
	"github.com/cryptrac/cryptrac-engine/internal/service"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type PaymentLinkHandler struct {
	svc *service.PaymentLinkService
}

func NewPaymentLinkHandler(svc *service.PaymentLinkService) *PaymentLinkHandler {
	return &PaymentLinkHandler{svc: svc}
}

func (h *PaymentLinkHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	}
	if req.MerchantID != "" && !isUUID(req.MerchantID) {
		badMerchantID(c)
		return
	}

	out, err := h.svc.Create(c.Request.Context(), req.ToDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusCreated
	if out.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.CreatePaymentLinkResponse{
		PaymentLink: dto.PaymentLinkResponse{PaymentLink: *out.Link, PaymentURL: out.PaymentURL},
		Breakdown:   out.Breakdown,
		Replayed:    out.Replayed,
	})
}

func (h *PaymentLinkHandler) List(c *gin.Context) {
	merchantID := c.Param("id")
	if !isUUID(merchantID) {
		badMerchantID(c)
		return
	}
	p := dto.ParsePagination(c)

	links, total, err := h.svc.List(c.Request.Context(), merchantID, p.PageSize, p.Offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.PaymentLinkListResponse{
		Data:       h.toResponses(links),
		Pagination: dto.NewPagination(p.Page, p.PageSize, total),
	})
}

func (h *PaymentLinkHandler) toResponses(links []model.PaymentLink) []dto.PaymentLinkResponse {
	out := make([]dto.PaymentLinkResponse, len(links))
	for i, l := range links {
		out[i] = dto.PaymentLinkResponse{PaymentLink: l, PaymentURL: h.svc.PaymentURL(l.LinkID)}
	}
	return out
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func badMerchantID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
		Error:  "validation failed",
		Errors: []dto.ValidationError{{Field: "merchant_id", Message: "must be a UUID"}},
	})
}
