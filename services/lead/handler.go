package lead

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateSignup(c *gin.Context) {
	var req CreateSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.CreateSignup(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"business_id":   record.BusinessID,
		"business_name": record.LookupBusinessName,
		"rating":        record.LookupRating,
		"review_count":  record.LookupReviewCount,
	})
}

func (h *Handler) GetSignup(c *gin.Context) {
	record, err := h.svc.MostRecentByBusinessID(c.Request.Context(), c.Param("businessId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"signup_timestamp": record.CreatedAt})
}

func (h *Handler) UpdateSignupDetails(c *gin.Context) {
	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.UpdateSignupDetails(c.Request.Context(), c.Param("businessId"), req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
