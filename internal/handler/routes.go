package handler

import "github.com/gin-gonic/gin"

type Handlers struct {
	Health       *HealthHandler
	PaymentLinks *PaymentLinkHandler
	Preview      *PreviewHandler
	Currencies   *CurrencyHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/payment-links", h.PaymentLinks.Create)
		api.POST("/preview", h.Preview.Preview)
		api.GET("/merchants/:id/payment-links", h.PaymentLinks.List)
		api.GET("/merchants/:id/currencies", h.Currencies.List)
		api.GET("/merchants/:id/uri-check", h.Currencies.URICheck)
	}
}
