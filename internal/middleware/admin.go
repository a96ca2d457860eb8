package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jasha9/digitaltwin/internal/pkg/errcode"
	"github.com/jasha9/digitaltwin/internal/pkg/response"
)

// AdminAuth guards cache-administration endpoints with a static bearer
// token. An empty configured token disables the endpoints entirely.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.Error(c, errcode.ErrUnauthorized, "admin endpoints are disabled")
			c.Abort()
			return
		}
		header := c.GetHeader("Authorization")
		presented := strings.TrimPrefix(header, "Bearer ")
		if presented == header || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			response.Error(c, errcode.ErrUnauthorized, http.StatusText(http.StatusUnauthorized))
			c.Abort()
			return
		}
		c.Next()
	}
}
