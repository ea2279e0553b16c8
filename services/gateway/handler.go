package gateway

import (
	"fmt"
	"net/http"

	"reviewfunnel/pkg/config"
	"reviewfunnel/pkg/errutil"
	"reviewfunnel/services/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handler is the public smart-link endpoint printed on cards. It always
// answers with a redirect: end users scanning physical material never see an
// error page.
type Handler struct {
	customers *customer.Service
	links     *config.Config
}

type HandlerParams struct {
	fx.In
	Customers *customer.Service
	Config    *config.Config
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		customers: p.Customers,
		links:     p.Config,
	}
}

func (h *Handler) Redirect(c *gin.Context) {
	ctx := c.Request.Context()
	customerID := c.Param("customerId")

	record, err := h.customers.Get(ctx, customerID)
	if err != nil {
		if !errutil.Is(err, errutil.StatusNotFound) {
			zap.L().Error("gateway customer load failed", zap.String("customer_id", customerID), zap.Error(err))
		}
		c.Redirect(http.StatusFound, h.links.Links.FallbackURL)
		return
	}

	// The off switch: canceled customers' printed links stop counting and
	// stop funneling traffic, immediately.
	if record.SubscriptionStatus != customer.Active {
		c.Redirect(http.StatusFound, h.links.Links.InactiveURL)
		return
	}

	counted, err := h.customers.CountInvite(ctx, customerID)
	if err != nil || !counted {
		if err != nil {
			zap.L().Error("gateway invite count failed", zap.String("customer_id", customerID), zap.Error(err))
		}
		c.Redirect(http.StatusFound, h.links.Links.FallbackURL)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf(h.links.Links.ReviewURLTemplate, record.BusinessID))
}
