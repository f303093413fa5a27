package profile

import (
	"context"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(profileService profileService) Handler {
	return Handler{profileService: profileService}
}

type Handler struct {
	profileService profileService
}

type profileService interface {
	FindById(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	CompleteOnboarding(ctx context.Context, id uuid.UUID, displayName string) (*model.Profile, error)
}

// Me returns the signed-in profile
func (h Handler) Me(c *gin.Context) {
	// swagger:route GET /me me
	//
	// Current profile
	//
	// Return the profile of the signed-in user
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Profile
	//	401: Error
	//	404: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.profileService.FindById(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

type OnboardingRequest struct {
	DisplayName string `json:"displayName" form:"displayName" binding:"max=100"`
	Next        string `json:"next" form:"next"`
}

type OnboardingResponse struct {
	Profile *model.Profile `json:"profile"`
	Next    string         `json:"next"`
}

// Onboarding completes the onboarding of the signed-in profile
func (h Handler) Onboarding(c *gin.Context) {
	// swagger:route POST /onboarding completeOnboarding
	//
	// Complete onboarding
	//
	// Set the display name and mark onboarding as completed. The response names the page to continue
	// to.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: OnboardingResponse
	//	400: Error
	//	401: Error
	//	415: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var request OnboardingRequest
	if err := handler.DataBinder(c, &request, "Display name is too long."); err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.profileService.CompleteOnboarding(c.Request.Context(), user.ID, request.DisplayName)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, OnboardingResponse{Profile: profile, Next: middleware.SafeNext(request.Next)})
}
