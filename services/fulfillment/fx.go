package fulfillment

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/webhook/stripe", h.Webhook)
}

var Module = fx.Module("fulfillment.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
)

var Server = fx.Module("fulfillment.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
