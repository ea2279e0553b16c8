package checkout

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/api/checkout", h.CreateCheckout)
	r.POST("/api/portal", h.CreatePortalLink)
}

var Module = fx.Module("checkout.module",
	ProviderModule,
	fx.Provide(
		NewService,
		NewHandler,
	),
)

var Server = fx.Module("checkout.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
