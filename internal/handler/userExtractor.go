package handler

import (
	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
)

// GetUserFromContext returns the profile set by the authentication middleware.
func GetUserFromContext(c *gin.Context) (*model.Profile, error) {
	userData, exists := c.Get("user")
	if !exists {
		return nil, errdef.NewUnauthorized("Sign in required.")
	}

	user, ok := userData.(*model.Profile)
	if !ok {
		return nil, errdef.NewUnauthorized("Sign in required.")
	}
	return user, nil
}
