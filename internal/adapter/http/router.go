package http

import (
	"github.com/Daniel-Kav/order-microservice/internal/adapter/http/middleware"
	"github.com/Daniel-Kav/order-microservice/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *OrderHandler, gh *GraphQLHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/graphql", gh.Serve)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/:id", h.GetOrder)
		v1.PATCH("/orders/:id", h.UpdateOrder)
		v1.POST("/orders/:id/confirm-payment", h.ConfirmPayment)
		v1.POST("/orders/:id/cancel", h.CancelOrder)
		v1.DELETE("/orders/:id", h.DeleteOrder)
	}

	return r
}
