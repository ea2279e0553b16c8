package customer

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetCustomer(c *gin.Context) {
	record, err := h.svc.Get(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) ClaimRedemption(c *gin.Context) {
	err := h.svc.ClaimRedemption(c.Request.Context(), c.Param("customerId"), time.Now())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
