package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/gin-gonic/gin"
)

// WebhookSecret guards webhook endpoints with a shared bearer secret. Without a configured secret
// every request is refused.
func WebhookSecret(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		if secret == "" {
			_ = c.Error(errdef.NewServiceUnavailable("Webhook not configured"))
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			_ = c.Error(errdef.NewUnauthorized("Unauthorized"))
			c.Abort()
			return
		}

		c.Next()
	}
}
