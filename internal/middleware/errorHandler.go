package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error added to the context as {"error": "..."} with a status
// derived from its errdef kind. Errors of unknown kind are not exposed to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}
		if c.Writer.Status() != http.StatusOK {
			// c.AbortWithError already sent the status line and headers
			body, _ := json.Marshal(gin.H{"error": err.Error()})
			_, _ = c.Writer.Write(body)
			return
		}
		if c.Writer.Written() {
			return
		}

		c.JSON(statusOf(err), gin.H{"error": messageOf(c, err)})
	}
}

func statusOf(err error) int {
	switch {
	case errdef.IsBadRequest(err):
		return http.StatusBadRequest
	case errdef.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errdef.IsForbidden(err):
		return http.StatusForbidden
	case errdef.IsNotFound(err):
		return http.StatusNotFound
	case errdef.IsDuplicated(err), errdef.IsConflict(err):
		return http.StatusConflict
	case errdef.IsUnsupportedMediaType(err):
		return http.StatusUnsupportedMediaType
	case errdef.IsUpstream(err):
		return http.StatusBadGateway
	case errdef.IsServiceUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(c *gin.Context, err error) string {
	if statusOf(err) != http.StatusInternalServerError {
		return err.Error()
	}
	id, _ := GetCorrelationID(c.Request.Context())
	return fmt.Sprintf("something went wrong. We'll look into it if you send us the id %q :)", id)
}
