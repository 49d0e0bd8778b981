package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cryptrac/cryptrac-engine/internal/dto"
	"github.com/cryptrac/cryptrac-engine/internal/service"
)

const defaultCheckAmount = "10"

type CurrencyHandler struct {
	currencies *service.CurrencyService
	uriCheck   *service.URICheckService
}

func NewCurrencyHandler(currencies *service.CurrencyService, uriCheck *service.URICheckService) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies, uriCheck: uriCheck}
}

func (h *CurrencyHandler) List(c *gin.Context) {
	merchantID := c.Param("id")
	if !isUUID(merchantID) {
		badMerchantID(c)
		return
	}

	out, err := h.currencies.List(c.Request.Context(), merchantID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// URICheck renders a payment URI for each merchant wallet at the given
// amount. It is a debugging aid for wallet and extra ID configuration.
func (h *CurrencyHandler) URICheck(c *gin.Context) {
	merchantID := c.Param("id")
	if !isUUID(merchantID) {
		badMerchantID(c)
		return
	}

	amount, err := decimal.NewFromString(c.DefaultQuery("amount", defaultCheckAmount))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error:  "validation failed",
			Errors: []dto.ValidationError{{Field: "amount", Message: "must be a decimal number"}},
		})
		return
	}

	out, err := h.uriCheck.Check(c.Request.Context(), merchantID, amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
