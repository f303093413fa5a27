package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timezone string

const (
	TimezoneEastern  Timezone = "America/New_York"
	TimezoneCentral  Timezone = "America/Chicago"
	TimezoneMountain Timezone = "America/Denver"
	TimezonePacific  Timezone = "America/Los_Angeles"
)

var Timezones = []Timezone{TimezoneEastern, TimezoneCentral, TimezoneMountain, TimezonePacific}

var timezoneLabels = map[Timezone]string{
	TimezoneEastern:  "Eastern",
	TimezoneCentral:  "Central",
	TimezoneMountain: "Mountain",
	TimezonePacific:  "Pacific",
}

func (tz Timezone) Valid() bool {
	_, ok := timezoneLabels[tz]
	return ok
}

func (tz Timezone) Label() string {
	return timezoneLabels[tz]
}

// Event domain object defining an event volunteers can sign up for. Dates are stored as
// YYYY-MM-DD and times as HH:MM[:SS], both local to Timezone.
// swagger:model
type Event struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	Title            string        `gorm:"not null" json:"title"`
	Slug             string        `gorm:"index" json:"slug"`
	StartDate        string        `gorm:"type:varchar(10);not null;index" json:"startDate"`
	EndDate          string        `gorm:"type:varchar(10);not null" json:"endDate"`
	StartTime        *string       `gorm:"type:varchar(8)" json:"startTime"`
	EndTime          *string       `gorm:"type:varchar(8)" json:"endTime"`
	Timezone         Timezone      `gorm:"not null" json:"timezone"`
	Location         *string       `json:"location"`
	Description      *string       `gorm:"type:text" json:"description"`
	ExternalLink     *string       `json:"externalLink"`
	ImageURL         *string       `json:"imageUrl"`
	VolunteerDetails *string       `gorm:"type:text" json:"volunteerDetails"`
	Capacity         int           `gorm:"not null;check:capacity >= 1" json:"capacity"`
	Schedule         []ScheduleRow `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"schedule"`
	Signups          []Signup      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ScheduleRow is one line of an event's volunteer schedule
type ScheduleRow struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position  int       `gorm:"not null" json:"-"`
	Day       string    `json:"day"`
	StartTime *string   `json:"startTime"`
	EndTime   *string   `json:"endTime"`
	Activity  string    `json:"activity"`
	Room      *string   `json:"room"`
}
