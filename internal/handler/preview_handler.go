package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cryptrac/cryptrac-engine/internal/dto"
	"github.com/cryptrac/cryptrac-engine/internal/service"
)

type PreviewHandler struct {
	svc *service.PreviewService
}

func NewPreviewHandler(svc *service.PreviewService) *PreviewHandler {
	return &PreviewHandler{svc: svc}
}

func (h *PreviewHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorListResponse{
			Error: "validation failed: " + err.Error(),
		})
		return
	}
	if req.MerchantID != "" && !isUUID(req.MerchantID) {
		badMerchantID(c)
		return
	}

	out, err := h.svc.Preview(c.Request.Context(), req.ToDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, out)
}
