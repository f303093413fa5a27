package event

import (
	"context"
	"log/slog"
	"testing"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/geocode"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/asianpilots/volunteer-manager/pkg/weather"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Title:     "  AirVenture Oshkosh ",
		StartDate: "2025-07-21",
		EndDate:   "2025-07-27",
		Timezone:  model.TimezoneCentral,
		Capacity:  20,
	}
}

func TestInput_Event(t *testing.T) {
	blank := "  "
	location := " Wittman Regional Airport, Oshkosh, WI "
	input := validInput()
	input.Location = &location
	input.Description = &blank
	input.Schedule = []ScheduleInput{
		{Day: "Mon", Activity: "Setup"},
		{Day: " ", Activity: " "},
		{Day: "Tue", Activity: "Booth", Room: &blank},
	}

	event, err := input.event()

	require.NoError(t, err)
	assert.Equal(t, "AirVenture Oshkosh", event.Title)
	assert.Equal(t, "airventure-oshkosh", event.Slug)
	assert.Equal(t, "Wittman Regional Airport, Oshkosh, WI", *event.Location)
	assert.Nil(t, event.Description)
	require.Len(t, event.Schedule, 2)
	assert.Equal(t, 0, event.Schedule[0].Position)
	assert.Equal(t, "Booth", event.Schedule[1].Activity)
	assert.Equal(t, 1, event.Schedule[1].Position)
	assert.Nil(t, event.Schedule[1].Room)
}

func TestInput_Event_Invalid(t *testing.T) {
	tests := map[string]func(in *Input){
		"BlankTitle":      func(in *Input) { in.Title = "   " },
		"ZeroCapacity":    func(in *Input) { in.Capacity = 0 },
		"UnknownTimezone": func(in *Input) { in.Timezone = "Europe/Oslo" },
		"StartDate":       func(in *Input) { in.StartDate = "21/07/2025" },
		"EndDate":         func(in *Input) { in.EndDate = "" },
		"EndBeforeStart":  func(in *Input) { in.EndDate = "2025-07-20" },
	}
	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			input := validInput()
			modify(&input)

			_, err := input.event()

			require.Error(t, err)
			assert.True(t, errdef.IsBadRequest(err))
			assert.Equal(t, "Missing or invalid fields.", err.Error())
		})
	}
}

func TestService_FindAll(t *testing.T) {
	first := model.Event{ID: uuid.New(), Title: "First", Timezone: model.TimezoneEastern}
	start := "09:00"
	second := model.Event{ID: uuid.New(), Title: "Second", Timezone: model.TimezonePacific, StartTime: &start}
	repository := &mockRepository{}
	repository.On("FindAll", Filter{From: "2025-01-01"}).Return([]model.Event{first, second}, nil)
	repository.
		On("Counts", []uuid.UUID{first.ID, second.ID}).
		Return(map[uuid.UUID]Counts{second.ID: {EventID: second.ID, SignupCount: 4, WaitlistCount: 2}}, nil)
	service := NewService(slog.Default(), repository, nil, nil, nil, nil)

	summaries, err := service.FindAll(context.Background(), Filter{From: "2025-01-01"})

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "First", summaries[0].Title)
	assert.Zero(t, summaries[0].SignupCount)
	assert.Equal(t, "Eastern", summaries[0].TimezoneLabel)
	assert.EqualValues(t, 4, summaries[1].SignupCount)
	assert.EqualValues(t, 2, summaries[1].WaitlistCount)
	assert.Equal(t, "9:00 AM", summaries[1].TimeLabel)
	repository.AssertExpectations(t)
}

func TestService_Detail(t *testing.T) {
	event := &model.Event{ID: uuid.New(), Timezone: model.TimezoneMountain}
	name := "Amelia"
	me := uuid.New()
	position := 1
	signups := []model.Signup{
		{UserID: uuid.New(), Profile: &model.Profile{DisplayName: &name}},
		{UserID: me, WaitlistPosition: &position, Profile: &model.Profile{}},
	}
	repository := &mockRepository{}
	repository.On("FindById", event.ID).Return(event, nil)
	signupService := &mockSignupService{}
	signupService.On("FindByEvent", event.ID).Return(signups, nil)
	service := NewService(slog.Default(), repository, signupService, nil, nil, nil)

	detail, err := service.Detail(context.Background(), event.ID, me)

	require.NoError(t, err)
	require.Len(t, detail.Confirmed, 1)
	assert.Equal(t, "Amelia", detail.Confirmed[0].Name)
	require.Len(t, detail.Waitlist, 1)
	assert.Equal(t, "—", detail.Waitlist[0].Name)
	require.NotNil(t, detail.MySignup)
	assert.Equal(t, 1, *detail.MySignup.WaitlistPosition)
	assert.Nil(t, detail.MySignup.Profile)
	assert.Equal(t, "Mountain", detail.TimezoneLabel)

	t.Run("Anonymous", func(t *testing.T) {
		detail, err := service.Detail(context.Background(), event.ID, uuid.Nil)

		require.NoError(t, err)
		assert.Nil(t, detail.MySignup)
	})
}

func TestService_Forecast(t *testing.T) {
	address := "525 W 20th Ave, Oshkosh, WI"
	venue := "Hangar 3"
	withAddress := &model.Event{ID: uuid.New(), StartDate: "2025-07-21", EndDate: "2025-07-27", Location: &address}
	withVenue := &model.Event{ID: uuid.New(), StartDate: "2025-07-21", EndDate: "2025-07-27", Location: &venue}
	unknown := &model.Event{ID: uuid.New(), StartDate: "2025-07-21", EndDate: "2025-07-21", Location: &address}
	repository := &mockRepository{}
	repository.On("FindById", withAddress.ID).Return(withAddress, nil)
	repository.On("FindById", withVenue.ID).Return(withVenue, nil)
	repository.On("FindById", unknown.ID).Return(unknown, nil)
	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", address).Return(&geocode.Result{Lat: 43.98, Lon: -88.55}).Once()
	geocoder.On("Geocode", address).Return(nil)
	forecaster := &mockForecaster{}
	forecaster.
		On("Forecast", 43.98, -88.55, "2025-07-21", "2025-07-23").
		Return([]weather.Day{{Date: "2025-07-21"}, {Date: "2025-07-22"}, {Date: "2025-07-23"}})
	service := NewService(slog.Default(), repository, nil, nil, geocoder, forecaster)

	forecast, err := service.Forecast(context.Background(), withAddress.ID)
	require.NoError(t, err)
	assert.Len(t, forecast.Days, 3)
	assert.Equal(t, &address, forecast.Location)

	forecast, err = service.Forecast(context.Background(), withVenue.ID)
	require.NoError(t, err)
	assert.Empty(t, forecast.Days)
	assert.NotNil(t, forecast.Days)

	forecast, err = service.Forecast(context.Background(), unknown.ID)
	require.NoError(t, err)
	assert.Empty(t, forecast.Days)

	geocoder.AssertNumberOfCalls(t, "Geocode", 2)
	forecaster.AssertExpectations(t)
}

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Create(_ context.Context, event *model.Event) error {
	return m.Called(event).Error(0)
}

func (m *mockRepository) Update(_ context.Context, event *model.Event) error {
	return m.Called(event).Error(0)
}

func (m *mockRepository) Delete(_ context.Context, id uuid.UUID) error {
	return m.Called(id).Error(0)
}

func (m *mockRepository) FindById(_ context.Context, id uuid.UUID) (*model.Event, error) {
	called := m.Called(id)
	event, ok := called.Get(0).(*model.Event)
	if ok {
		return event, nil
	}
	return nil, called.Error(1)
}

func (m *mockRepository) FindAll(_ context.Context, filter Filter) ([]model.Event, error) {
	called := m.Called(filter)
	return called.Get(0).([]model.Event), called.Error(1)
}

func (m *mockRepository) Counts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error) {
	called := m.Called(ids)
	return called.Get(0).(map[uuid.UUID]Counts), called.Error(1)
}

type mockSignupService struct{ mock.Mock }

func (m *mockSignupService) FindByEvent(_ context.Context, eventID uuid.UUID) ([]model.Signup, error) {
	called := m.Called(eventID)
	return called.Get(0).([]model.Signup), called.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(_ context.Context, address string) *geocode.Result {
	result, _ := m.Called(address).Get(0).(*geocode.Result)
	return result
}

type mockForecaster struct{ mock.Mock }

func (m *mockForecaster) Forecast(_ context.Context, lat, lon float64, start, end string) []weather.Day {
	return m.Called(lat, lon, start, end).Get(0).([]weather.Day)
}
