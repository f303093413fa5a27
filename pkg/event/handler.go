package event

import (
	"context"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(eventService eventService) Handler {
	return Handler{eventService: eventService}
}

type Handler struct {
	eventService eventService
}

type eventService interface {
	Create(ctx context.Context, input Input) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context, filter Filter) ([]Summary, error)
	Detail(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Detail, error)
	Roster(ctx context.Context, id uuid.UUID) (*Roster, error)
	Forecast(ctx context.Context, id uuid.UUID) (*Forecast, error)
}

// Create event
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /admin/events createEvent
	//
	// Create event
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	201: Event
	//	400: Error
	//	401: Error
	//	403: Error
	//	415: Error
	var input Input
	if err := handler.DataBinder(c, &input, invalidFields); err != nil {
		_ = c.Error(err)
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Update event
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /admin/events/{id} updateEvent
	//
	// Update event
	//
	// Update the event and replace its schedule
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Event
	//	400: Error
	//	401: Error
	//	403: Error
	//	404: Error
	//	415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var input Input
	if err := handler.DataBinder(c, &input, invalidFields); err != nil {
		_ = c.Error(err)
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete event
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /admin/events/{id} deleteEvent
	//
	// Delete event
	//
	// Delete the event together with its schedule and signups
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	202:
	//	401: Error
	//	403: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

type findAllQuery struct {
	From string `form:"from" binding:"omitempty,isodate"`
	To   string `form:"to" binding:"omitempty,isodate"`
}

// FindAll events
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /events findEvents
	//
	// Find events
	//
	// Find events ordered by start date with their signup counts. Optionally only events overlapping
	// the from and to dates.
	//
	// responses:
	//	200: []EventSummary
	//	400: Error
	h.findAll(c, false)
}

// FindAllAdmin events
func (h Handler) FindAllAdmin(c *gin.Context) {
	// swagger:route GET /admin/events findAdminEvents
	//
	// Find events
	//
	// Find all events, latest start date first, with their signup counts
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: []EventSummary
	//	401: Error
	//	403: Error
	h.findAll(c, true)
}

func (h Handler) findAll(c *gin.Context, descending bool) {
	var query findAllQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		_ = c.Error(errdef.NewBadRequest("Dates must be formatted as YYYY-MM-DD."))
		return
	}

	events, err := h.eventService.FindAll(c.Request.Context(), Filter{
		From:       query.From,
		To:         query.To,
		Descending: descending,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// FindById event
func (h Handler) FindById(c *gin.Context) {
	// swagger:route GET /events/{id} findEvent
	//
	// Find event
	//
	// Find an event with its schedule, confirmed volunteers and waitlist. The signed-in user's own
	// signup is included.
	//
	// responses:
	//	200: EventDetail
	//	400: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	userID := uuid.Nil
	if user, err := handler.GetUserFromContext(c); err == nil {
		userID = user.ID
	}

	detail, err := h.eventService.Detail(c.Request.Context(), id, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Roster of an event
func (h Handler) Roster(c *gin.Context) {
	// swagger:route GET /admin/events/{id}/signups findEventRoster
	//
	// Event roster
	//
	// Signups of an event with contact details and the shipments sent for it
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Roster
	//	401: Error
	//	403: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	roster, err := h.eventService.Roster(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, roster)
}

// Forecast for an event
func (h Handler) Forecast(c *gin.Context) {
	// swagger:route GET /events/{id}/forecast findEventForecast
	//
	// Event forecast
	//
	// Weather forecast for the first three days of the event
	//
	// responses:
	//	200: Forecast
	//	400: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	forecast, err := h.eventService.Forecast(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}
