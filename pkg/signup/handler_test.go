package signup

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_SignUp(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	eventID := uuid.New()
	position := 3
	service := &mockSignupService{}
	service.
		On("SignUp", eventID, user.ID, mock.MatchedBy(func(d Details) bool {
			return d.Phone != nil && *d.Phone == "555-0100"
		})).
		Return(&Result{Signup: &model.Signup{EventID: eventID, UserID: user.ID, WaitlistPosition: &position}, Waitlist: true, Position: &position}, nil)

	w := serve(t, service, user, http.MethodPost, "/events/"+eventID.String()+"/signup", `{"phone":"555-0100"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"waitlist":true`)
	assert.Contains(t, w.Body.String(), `"position":3`)
	service.AssertExpectations(t)
}

func TestHandler_SignUp_WithoutBody(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	eventID := uuid.New()
	service := &mockSignupService{}
	service.
		On("SignUp", eventID, user.ID, Details{}).
		Return(&Result{Signup: &model.Signup{EventID: eventID, UserID: user.ID}}, nil)

	w := serve(t, service, user, http.MethodPost, "/events/"+eventID.String()+"/signup", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"waitlist":false`)
	service.AssertExpectations(t)
}

func TestHandler_SignUp_ChunkedBody(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	eventID := uuid.New()
	chunked := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/events/"+eventID.String()+"/signup", io.NopCloser(strings.NewReader(body)))
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("Empty", func(t *testing.T) {
		service := &mockSignupService{}
		service.
			On("SignUp", eventID, user.ID, Details{}).
			Return(&Result{Signup: &model.Signup{EventID: eventID, UserID: user.ID}}, nil)

		w := serveRequest(t, service, user, chunked(""))

		assert.Equal(t, http.StatusCreated, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("WithDetails", func(t *testing.T) {
		service := &mockSignupService{}
		service.
			On("SignUp", eventID, user.ID, mock.MatchedBy(func(d Details) bool {
				return d.Phone != nil && *d.Phone == "555-0100"
			})).
			Return(&Result{Signup: &model.Signup{EventID: eventID, UserID: user.ID}}, nil)

		w := serveRequest(t, service, user, chunked(`{"phone":"555-0100"}`))

		assert.Equal(t, http.StatusCreated, w.Code)
		service.AssertExpectations(t)
	})
}

func TestHandler_SignUp_Duplicate(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	eventID := uuid.New()
	service := &mockSignupService{}
	service.
		On("SignUp", eventID, user.ID, Details{}).
		Return(nil, errdef.NewDuplicated(alreadySignedUp))

	w := serve(t, service, user, http.MethodPost, "/events/"+eventID.String()+"/signup", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"You are already signed up for this event."}`, w.Body.String())
}

func TestHandler_SignUp_Unauthenticated(t *testing.T) {
	service := &mockSignupService{}

	w := serve(t, service, nil, http.MethodPost, "/events/"+uuid.NewString()+"/signup", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	service.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_SignUp_InvalidEventID(t *testing.T) {
	service := &mockSignupService{}

	w := serve(t, service, &model.Profile{ID: uuid.New()}, http.MethodPost, "/events/not-a-uuid/signup", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Leave(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	eventID := uuid.New()
	service := &mockSignupService{}
	service.On("Leave", eventID, user.ID).Return(nil)

	w := serve(t, service, user, http.MethodDelete, "/events/"+eventID.String()+"/signup", "")

	assert.Equal(t, http.StatusAccepted, w.Code)
	service.AssertExpectations(t)
}

func TestHandler_Update(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	eventID := uuid.New()
	notes := "Flying in Thursday"
	service := &mockSignupService{}
	service.
		On("Update", eventID, user.ID, mock.MatchedBy(func(d Details) bool {
			return d.TravelNotes != nil && *d.TravelNotes == notes
		})).
		Return(&model.Signup{EventID: eventID, UserID: user.ID, TravelNotes: &notes}, nil)

	w := serve(t, service, user, http.MethodPut, "/events/"+eventID.String()+"/signup", `{"travelNotes":"Flying in Thursday"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"travelNotes":"Flying in Thursday"`)
	service.AssertExpectations(t)
}

func TestHandler_FindMine(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	service := &mockSignupService{}
	service.
		On("FindByProfile", user.ID).
		Return([]model.Signup{{EventID: uuid.New(), UserID: user.ID}}, nil)

	w := serve(t, service, user, http.MethodGet, "/me/signups", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
	service.AssertExpectations(t)
}

func serve(t *testing.T, service signupService, user *model.Profile, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return serveRequest(t, service, user, req)
}

func serveRequest(t *testing.T, service signupService, user *model.Profile, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	authenticator := func(c *gin.Context) {
		if user == nil {
			_ = c.Error(errdef.NewUnauthorized("Sign in required."))
			c.Abort()
			return
		}
		c.Set("user", user)
	}
	Routes(r, authenticator, NewHandler(service))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockSignupService struct{ mock.Mock }

func (m *mockSignupService) SignUp(_ context.Context, eventID, userID uuid.UUID, details Details) (*Result, error) {
	called := m.Called(eventID, userID, details)
	result, ok := called.Get(0).(*Result)
	if ok {
		return result, nil
	}
	return nil, called.Error(1)
}

func (m *mockSignupService) Leave(_ context.Context, eventID, userID uuid.UUID) error {
	return m.Called(eventID, userID).Error(0)
}

func (m *mockSignupService) Update(_ context.Context, eventID, userID uuid.UUID, details Details) (*model.Signup, error) {
	called := m.Called(eventID, userID, details)
	signup, ok := called.Get(0).(*model.Signup)
	if ok {
		return signup, nil
	}
	return nil, called.Error(1)
}

func (m *mockSignupService) FindByProfile(_ context.Context, userID uuid.UUID) ([]model.Signup, error) {
	called := m.Called(userID)
	return called.Get(0).([]model.Signup), called.Error(1)
}
