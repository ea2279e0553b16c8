package gateway

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/r/:customerId", h.Redirect)
}

var Module = fx.Module("gateway.module",
	fx.Provide(
		NewHandler,
	),
)

var Server = fx.Module("gateway.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
