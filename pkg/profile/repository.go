package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

// FindOrCreate finds the profile of the Discord account or creates it with the given attributes
func (r repository) FindOrCreate(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	var p *model.Profile
	err := r.db.
		WithContext(ctx).
		Where(model.Profile{DiscordID: profile.DiscordID}).
		Attrs(model.Profile{DiscordUsername: profile.DiscordUsername, AvatarURL: profile.AvatarURL, IsAdmin: profile.IsAdmin}).
		FirstOrCreate(&p).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create profile: %v", err)
	}
	return p, nil
}

// UpdateAccount writes the Discord username, avatar and admin flag
func (r repository) UpdateAccount(ctx context.Context, profile *model.Profile) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.
		WithContext(ctx).
		Model(profile).
		Select("DiscordUsername", "AvatarURL", "IsAdmin").
		Updates(profile).Error
	if err != nil {
		return fmt.Errorf("failed to update profile %q: %v", profile.ID, err)
	}
	return nil
}

func (r repository) CompleteOnboarding(ctx context.Context, id uuid.UUID, displayName *string, completedAt time.Time) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	db := r.db.
		WithContext(ctx).
		Model(&model.Profile{ID: id}).
		Select("DisplayName", "OnboardingCompletedAt").
		Updates(model.Profile{DisplayName: displayName, OnboardingCompletedAt: &completedAt})
	if db.Error != nil {
		return fmt.Errorf("failed to complete onboarding of profile %q: %v", id, db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("failed to find profile with id %q", id)
	}
	return nil
}

func (r repository) FindById(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p *model.Profile
	err := r.db.
		WithContext(ctx).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find profile with id %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %v", err)
	}
	return p, nil
}
