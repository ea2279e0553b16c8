package portal

import (
	"net/http"

	"reviewfunnel/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginLinkRequest struct {
	Email string `json:"email"`
}

func (h *Handler) SendLoginLink(c *gin.Context) {
	var req loginLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	if err := h.svc.SendLoginLink(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}

	// Same body whether or not the email matched a customer.
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type consumeTokenRequest struct {
	CustomerID string `json:"customer_id"`
	Token      string `json:"token"`
}

func (h *Handler) ConsumeToken(c *gin.Context) {
	var req consumeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.svc.ConsumeToken(c.Request.Context(), req.CustomerID, req.Token)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, record)
}
