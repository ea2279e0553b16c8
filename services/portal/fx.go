package portal

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/api/login-link", h.SendLoginLink)
	r.POST("/api/login-link/consume", h.ConsumeToken)
}

var Module = fx.Module("portal.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
)

var Server = fx.Module("portal.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
