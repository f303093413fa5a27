package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SignupRole string

const (
	RoleVolunteer     SignupRole = "Volunteer"
	RoleLeadVolunteer SignupRole = "Lead Volunteer"
)

var SignupRoles = []SignupRole{RoleVolunteer, RoleLeadVolunteer}

// Signup domain object linking a profile to an event. A nil WaitlistPosition means the signup is
// confirmed.
// swagger:model
type Signup struct {
	ID                     uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt              time.Time   `json:"createdAt"`
	UpdatedAt              time.Time   `json:"updatedAt"`
	EventID                uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_event_signups_event_user" json:"eventId"`
	Event                  *Event      `json:"event,omitempty"`
	UserID                 uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_event_signups_event_user" json:"userId"`
	Profile                *Profile    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"profile,omitempty"`
	WaitlistPosition       *int        `json:"waitlistPosition"`
	Role                   *SignupRole `json:"role"`
	VolunteerStatus        *string     `json:"volunteerStatus"`
	Phone                  *string     `json:"phone"`
	IsLocal                *bool       `json:"isLocal"`
	FlightVoucherRequested *bool       `json:"flightVoucherRequested"`
	AvailabilityNotes      *string     `gorm:"type:text" json:"availabilityNotes"`
	TravelNotes            *string     `gorm:"type:text" json:"travelNotes"`
}

func (Signup) TableName() string {
	return "event_signups"
}

func (s *Signup) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s Signup) IsWaitlisted() bool {
	return s.WaitlistPosition != nil
}
