package middleware

import (
	"context"
	"log/slog"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewAuthorization(logger *slog.Logger, profileService profileService) AuthorizationMiddleware {
	return AuthorizationMiddleware{
		logger:         logger,
		profileService: profileService,
	}
}

type AuthorizationMiddleware struct {
	logger         *slog.Logger
	profileService profileService
}

type profileService interface {
	FindById(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// RequireAdministrator lets the request through only if the signed-in profile is flagged admin in
// the database. The flag carried by the token is ignored.
func (m AuthorizationMiddleware) RequireAdministrator(c *gin.Context) {
	u, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	profile, err := m.profileService.FindById(c.Request.Context(), u.ID)
	if err != nil {
		if errdef.IsNotFound(err) {
			_ = c.Error(errdef.NewUnauthorized("Sign in required."))
		} else {
			_ = c.Error(err)
		}
		c.Abort()
		return
	}

	if !profile.IsAdmin {
		m.logger.WarnContext(c.Request.Context(), "User tried to access administrator restricted endpoint", "user", u.ID)
		_ = c.Error(errdef.NewForbidden("Admins only."))
		c.Abort()
		return
	}

	c.Next()
}
