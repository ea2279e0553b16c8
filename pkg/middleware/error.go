package middleware

import (
	"net/http"

	"reviewfunnel/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Error converts errors attached to the gin context into the errutil wire
// shape. Runs after the handler chain.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || c.Writer.Written() {
			return
		}

		if v, ok := err.Err.(errutil.BaseError); ok {
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": errutil.StatusInternal, "message": "internal error"},
		})
	}
}
