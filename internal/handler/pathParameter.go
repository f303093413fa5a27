package handler

import (
	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetPathParameter parses the path parameter as a UUID. On failure a bad request error is added to
// the context, the request is aborted and false is returned.
func GetPathParameter(c *gin.Context, parameter string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(parameter))
	if err != nil {
		_ = c.Error(errdef.NewBadRequest("error parsing %q: %v", parameter, err))
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}
