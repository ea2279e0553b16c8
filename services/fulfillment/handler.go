package fulfillment

import (
	"io"
	"net/http"

	"reviewfunnel/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodyBytes = int64(65536)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Webhook acknowledges every authenticated event it does not handle, and
// returns 500 on internal failure so the provider's redelivery mechanism
// re-attempts.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err = h.svc.HandleEvent(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch errutil.StatusOf(err) {
		case errutil.StatusUnauthorized, errutil.StatusBadRequest:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		default:
			zap.L().Error("webhook fulfillment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fulfillment failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
