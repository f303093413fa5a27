package event

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/geocode"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/asianpilots/volunteer-manager/pkg/signup"
	"github.com/asianpilots/volunteer-manager/pkg/weather"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/exp/slices"
)

const invalidFields = "Missing or invalid fields."

func NewService(logger *slog.Logger, repository Repository, signupService signupService, shipmentService shipmentService, geocoder geocoder, forecaster forecaster) *Service {
	return &Service{
		logger:          logger,
		repository:      repository,
		signupService:   signupService,
		shipmentService: shipmentService,
		geocoder:        geocoder,
		forecaster:      forecaster,
	}
}

type Service struct {
	logger          *slog.Logger
	repository      Repository
	signupService   signupService
	shipmentService shipmentService
	geocoder        geocoder
	forecaster      forecaster
}

type Repository interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*model.Event, error)
	FindAll(ctx context.Context, filter Filter) ([]model.Event, error)
	Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error)
}

type signupService interface {
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Signup, error)
}

type shipmentService interface {
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Shipment, error)
}

type geocoder interface {
	Geocode(ctx context.Context, address string) *geocode.Result
}

type forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, start, end string) []weather.Day
}

// Input is an event as submitted by an administrator
type Input struct {
	Title            string          `json:"title" binding:"required"`
	StartDate        string          `json:"startDate" binding:"required,isodate"`
	EndDate          string          `json:"endDate" binding:"required,isodate"`
	StartTime        *string         `json:"startTime" binding:"omitempty,clock"`
	EndTime          *string         `json:"endTime" binding:"omitempty,clock"`
	Timezone         model.Timezone  `json:"timezone" binding:"required"`
	Location         *string         `json:"location"`
	Description      *string         `json:"description"`
	ExternalLink     *string         `json:"externalLink"`
	ImageURL         *string         `json:"imageUrl"`
	VolunteerDetails *string         `json:"volunteerDetails"`
	Capacity         int             `json:"capacity" binding:"required,gte=1"`
	Schedule         []ScheduleInput `json:"schedule"`
}

type ScheduleInput struct {
	Day       string  `json:"day"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Activity  string  `json:"activity"`
	Room      *string `json:"room"`
}

// event validates the input and returns it as an event. Optional strings are trimmed, blank ones
// become nil.
func (in Input) event() (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Capacity < 1 || !slices.Contains(model.Timezones, in.Timezone) {
		return nil, errdef.NewBadRequest(invalidFields)
	}

	start, err := time.Parse(time.DateOnly, strings.TrimSpace(in.StartDate))
	if err != nil {
		return nil, errdef.NewBadRequest(invalidFields)
	}
	end, err := time.Parse(time.DateOnly, strings.TrimSpace(in.EndDate))
	if err != nil || end.Before(start) {
		return nil, errdef.NewBadRequest(invalidFields)
	}

	event := &model.Event{
		Title:            title,
		Slug:             slug.Make(title),
		StartDate:        start.Format(time.DateOnly),
		EndDate:          end.Format(time.DateOnly),
		StartTime:        trimmed(in.StartTime),
		EndTime:          trimmed(in.EndTime),
		Timezone:         in.Timezone,
		Location:         trimmed(in.Location),
		Description:      trimmed(in.Description),
		ExternalLink:     trimmed(in.ExternalLink),
		ImageURL:         trimmed(in.ImageURL),
		VolunteerDetails: trimmed(in.VolunteerDetails),
		Capacity:         in.Capacity,
	}

	for _, row := range in.Schedule {
		day := strings.TrimSpace(row.Day)
		activity := strings.TrimSpace(row.Activity)
		if day == "" && activity == "" {
			continue
		}
		event.Schedule = append(event.Schedule, model.ScheduleRow{
			Position:  len(event.Schedule),
			Day:       day,
			StartTime: trimmed(row.StartTime),
			EndTime:   trimmed(row.EndTime),
			Activity:  activity,
			Room:      trimmed(row.Room),
		})
	}

	return event, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (s Service) Create(ctx context.Context, input Input) (*model.Event, error) {
	event, err := input.event()
	if err != nil {
		return nil, err
	}

	if err := s.repository.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Created event", "event", event.ID, "title", event.Title)
	return event, nil
}

// Update replaces the event's fields and schedule
func (s Service) Update(ctx context.Context, id uuid.UUID, input Input) (*model.Event, error) {
	event, err := input.event()
	if err != nil {
		return nil, err
	}
	event.ID = id

	if err := s.repository.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.repository.FindById(ctx, id)
}

func (s Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Deleted event", "event", id)
	return nil
}

func (s Service) FindById(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return s.repository.FindById(ctx, id)
}

// Summary is an event in a listing together with its signup counts
type Summary struct {
	model.Event
	TimezoneLabel string `json:"timezoneLabel"`
	TimeLabel     string `json:"timeLabel,omitempty"`
	SignupCount   int64  `json:"signupCount"`
	WaitlistCount int64  `json:"waitlistCount"`
}

// FindAll lists events with their signup counts ordered by start date, ascending unless the filter
// asks for descending.
func (s Service) FindAll(ctx context.Context, filter Filter) ([]Summary, error) {
	events, err := s.repository.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	counts, err := s.repository.Counts(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, len(events))
	for i, event := range events {
		summaries[i] = Summary{
			Event:         event,
			TimezoneLabel: event.Timezone.Label(),
			TimeLabel:     TimeRange(event.StartTime, event.EndTime),
			SignupCount:   counts[event.ID].SignupCount,
			WaitlistCount: counts[event.ID].WaitlistCount,
		}
	}
	return summaries, nil
}

// Attendee is a signup as shown publicly on an event
type Attendee struct {
	UserID           uuid.UUID         `json:"userId"`
	Name             string            `json:"name"`
	Role             *model.SignupRole `json:"role"`
	WaitlistPosition *int              `json:"waitlistPosition"`
}

type Detail struct {
	Event         *model.Event  `json:"event"`
	TimezoneLabel string        `json:"timezoneLabel"`
	TimeLabel     string        `json:"timeLabel,omitempty"`
	Confirmed     []Attendee    `json:"confirmed"`
	Waitlist      []Attendee    `json:"waitlist"`
	MySignup      *model.Signup `json:"mySignup"`
}

// Detail returns the event with its confirmed volunteers and waitlist. The signup of userID is
// included when there is one, pass uuid.Nil for anonymous visitors.
func (s Service) Detail(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Detail, error) {
	event, err := s.repository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	signups, err := s.signupService.FindByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	confirmed, waitlist := signup.Split(signups)

	detail := &Detail{
		Event:         event,
		TimezoneLabel: event.Timezone.Label(),
		TimeLabel:     TimeRange(event.StartTime, event.EndTime),
		Confirmed:     attendees(confirmed),
		Waitlist:      attendees(waitlist),
	}
	if userID != uuid.Nil {
		for _, sg := range signups {
			if sg.UserID == userID {
				mine := sg
				mine.Profile = nil
				detail.MySignup = &mine
				break
			}
		}
	}
	return detail, nil
}

func attendees(signups []model.Signup) []Attendee {
	result := make([]Attendee, len(signups))
	for i, s := range signups {
		name := "—"
		if s.Profile != nil {
			name = s.Profile.Name()
		}
		result[i] = Attendee{
			UserID:           s.UserID,
			Name:             name,
			Role:             s.Role,
			WaitlistPosition: s.WaitlistPosition,
		}
	}
	return result
}

// Roster is the administrator view of an event's signups including contact details and the
// shipments sent for the event.
type Roster struct {
	Event     *model.Event     `json:"event"`
	Confirmed []model.Signup   `json:"confirmed"`
	Waitlist  []model.Signup   `json:"waitlist"`
	Shipments []model.Shipment `json:"shipments"`
}

func (s Service) Roster(ctx context.Context, id uuid.UUID) (*Roster, error) {
	event, err := s.repository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	signups, err := s.signupService.FindByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	confirmed, waitlist := signup.Split(signups)

	shipments, err := s.shipmentService.FindByEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Roster{
		Event:     event,
		Confirmed: nonNil(confirmed),
		Waitlist:  nonNil(waitlist),
		Shipments: nonNil(shipments),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type Forecast struct {
	Location *string       `json:"location"`
	Days     []weather.Day `json:"days"`
}

// Forecast returns the weather for the first days of the event. Days is empty if the location
// isn't an address or cannot be geocoded.
func (s Service) Forecast(ctx context.Context, id uuid.UUID) (*Forecast, error) {
	event, err := s.repository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	forecast := &Forecast{Location: event.Location, Days: []weather.Day{}}
	if event.Location == nil || !geocode.LooksLikeAddress(*event.Location) {
		return forecast, nil
	}

	place := s.geocoder.Geocode(ctx, *event.Location)
	if place == nil {
		return forecast, nil
	}

	start, end := weather.ForecastRange(event.StartDate, event.EndDate)
	forecast.Days = nonNil(s.forecaster.Forecast(ctx, place.Lat, place.Lon, start, end))
	return forecast, nil
}
