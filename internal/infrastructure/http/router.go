package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rcarvalho-pb/storefront-payments/internal/infra/metrics"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/http/middleware"
)

func NewRouter(handler *PaymentHandler, counters *metrics.Counters, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(logger), middleware.Logger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/debug/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, counters.Snapshot())
	})

	p := r.Group("/payment")
	p.POST("/create-order", handler.CreateOrder)
	p.POST("/create-cod-order", handler.CreateCODOrder)
	p.POST("/capture-order", handler.CaptureOrder)
	p.GET("/success", handler.RedirectSuccess)
	p.GET("/cancel", handler.RedirectCancel)
	p.GET("/orders-status/:providerOrderId", handler.OrderStatus)
	p.GET("/history", handler.History)
	p.GET("/history/export", handler.ExportHistory)

	return r
}
