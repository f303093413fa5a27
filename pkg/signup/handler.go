package signup

import (
	"context"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(signupService signupService) Handler {
	return Handler{signupService: signupService}
}

type Handler struct {
	signupService signupService
}

type signupService interface {
	SignUp(ctx context.Context, eventID, userID uuid.UUID, details Details) (*Result, error)
	Leave(ctx context.Context, eventID, userID uuid.UUID) error
	Update(ctx context.Context, eventID, userID uuid.UUID, details Details) (*model.Signup, error)
	FindByProfile(ctx context.Context, userID uuid.UUID) ([]model.Signup, error)
}

const invalidDetails = "Invalid signup details."

// SignUp for an event
func (h Handler) SignUp(c *gin.Context) {
	// swagger:route POST /events/{id}/signup signUp
	//
	// Sign up
	//
	// Sign up for an event. If the event is at capacity the signup is placed on the waitlist.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	201: SignupResult
	//	400: Error
	//	401: Error
	//	404: Error
	//	409: Error
	//	415: Error
	eventID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var details Details
	if handler.HasBody(c) {
		if err := handler.DataBinder(c, &details, invalidDetails); err != nil {
			_ = c.Error(err)
			return
		}
	}

	result, err := h.signupService.SignUp(c.Request.Context(), eventID, user.ID, details)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Leave an event
func (h Handler) Leave(c *gin.Context) {
	// swagger:route DELETE /events/{id}/signup leaveEvent
	//
	// Leave event
	//
	// Remove the signed-in user's signup. Waitlist positions of others are not changed.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	202:
	//	401: Error
	//	404: Error
	eventID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.signupService.Leave(c.Request.Context(), eventID, user.ID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Update signup details
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /events/{id}/signup updateSignup
	//
	// Update signup
	//
	// Edit the volunteer form details of the signed-in user's signup
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Signup
	//	400: Error
	//	401: Error
	//	404: Error
	//	415: Error
	eventID, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var details Details
	if err := handler.DataBinder(c, &details, invalidDetails); err != nil {
		_ = c.Error(err)
		return
	}

	signup, err := h.signupService.Update(c.Request.Context(), eventID, user.ID, details)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, signup)
}

// FindMine returns the signed-in user's signups
func (h Handler) FindMine(c *gin.Context) {
	// swagger:route GET /me/signups findMySignups
	//
	// My signups
	//
	// Signups of the signed-in user with their events, newest first
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: []Signup
	//	401: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	signups, err := h.signupService.FindByProfile(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, signups)
}
