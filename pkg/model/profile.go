package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile domain object defining a signed-in volunteer or administrator
// swagger:model
type Profile struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	DiscordID             *string    `gorm:"uniqueIndex" json:"discordId"`
	DiscordUsername       *string    `json:"discordUsername"`
	AvatarURL             *string    `json:"avatarUrl"`
	DisplayName           *string    `json:"displayName"`
	OnboardingCompletedAt *time.Time `json:"onboardingCompletedAt"`
	IsAdmin               bool       `gorm:"not null;default:false" json:"isAdmin"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Name is what other volunteers and administrators see: the display name, the Discord username
// or a dash.
func (p Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	if p.DiscordUsername != nil && *p.DiscordUsername != "" {
		return *p.DiscordUsername
	}
	return "—"
}

func (p Profile) NeedsOnboarding() bool {
	return p.OnboardingCompletedAt == nil
}

type contextKey int

var userKey contextKey

// NewContextWithUser returns a new [context.Context] that carries the signed-in user.
func NewContextWithUser(ctx context.Context, user *Profile) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the signed-in user stored in ctx, if any.
func GetUserFromContext(ctx context.Context) (*Profile, bool) {
	user, ok := ctx.Value(userKey).(*Profile)
	return user, ok
}
