package lead

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/api/signup", h.CreateSignup)
	r.GET("/api/signup/:businessId", h.GetSignup)
	r.PATCH("/api/signup/:businessId", h.UpdateSignupDetails)
}

var Module = fx.Module("lead.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
)

var Server = fx.Module("lead.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
