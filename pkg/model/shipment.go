package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Carrier string

const (
	CarrierUSPS  Carrier = "USPS"
	CarrierUPS   Carrier = "UPS"
	CarrierFedEx Carrier = "FEDEX"
	CarrierDHL   Carrier = "DHL"
)

var Carriers = []Carrier{CarrierUSPS, CarrierUPS, CarrierFedEx, CarrierDHL}

type ShipmentStatus string

const (
	StatusPreShipment    ShipmentStatus = "Pre-Shipment"
	StatusInTransit      ShipmentStatus = "In Transit"
	StatusOutForDelivery ShipmentStatus = "Out for Delivery"
	StatusDelivered      ShipmentStatus = "Delivered"
	StatusException      ShipmentStatus = "Exception"
	StatusUnknown        ShipmentStatus = "Unknown"
)

// Shipment domain object defining a tracked package sent to an event or a volunteer. Status is
// nil until the first refresh or webhook delivery.
// swagger:model
type Shipment struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	EventID              *uuid.UUID      `gorm:"type:uuid;index" json:"eventId"`
	Event                *Event          `gorm:"constraint:OnDelete:SET NULL;" json:"event,omitempty"`
	ToSignupID           *uuid.UUID      `gorm:"type:uuid" json:"toSignupId"`
	ToSignup             *Signup         `gorm:"foreignKey:ToSignupID;constraint:OnDelete:SET NULL;" json:"toSignup,omitempty"`
	FromProfileID        *uuid.UUID      `gorm:"type:uuid" json:"fromProfileId"`
	FromProfile          *Profile        `gorm:"foreignKey:FromProfileID;constraint:OnDelete:SET NULL;" json:"fromProfile,omitempty"`
	Carrier              Carrier         `gorm:"not null" json:"carrier"`
	TrackingNumber       string          `gorm:"not null;uniqueIndex" json:"trackingNumber"`
	Status               *ShipmentStatus `json:"status"`
	StatusRaw            RawJSON         `gorm:"type:jsonb" json:"statusRaw"`
	ExpectedDeliveryDate *string         `gorm:"type:varchar(10)" json:"expectedDeliveryDate"`
	LastCheckedAt        *time.Time      `json:"lastCheckedAt"`
	DeliveredAt          *time.Time      `json:"deliveredAt"`
	Notes                *string         `gorm:"type:text" json:"notes"`
}

func (s *Shipment) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
