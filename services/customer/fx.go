package customer

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/api/customers/:customerId", h.GetCustomer)
	r.POST("/api/customers/:customerId/redemptions", h.ClaimRedemption)
}

var Module = fx.Module("customer.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
)

var Server = fx.Module("customer.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
