package profile

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_FindOrCreate(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(slog.Default(), repository, nil)

	profile, err := service.FindOrCreate(context.Background(), goth.User{UserID: "1001", NickName: "maverick", AvatarURL: "https://cdn.example/a.png"})

	require.NoError(t, err)
	assert.Equal(t, "1001", *profile.DiscordID)
	assert.Equal(t, "maverick", *profile.DiscordUsername)
	assert.Equal(t, "https://cdn.example/a.png", *profile.AvatarURL)
	assert.False(t, profile.IsAdmin)
	assert.True(t, profile.NeedsOnboarding())
	assert.Zero(t, repository.updates)
}

func TestService_FindOrCreate_Refresh(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(slog.Default(), repository, nil)
	first, err := service.FindOrCreate(context.Background(), goth.User{UserID: "1001", NickName: "maverick"})
	require.NoError(t, err)

	second, err := service.FindOrCreate(context.Background(), goth.User{UserID: "1001", Name: "Pete Mitchell", AvatarURL: "https://cdn.example/b.png"})

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Pete Mitchell", *second.DiscordUsername, "want the name used when there is no nickname")
	assert.Equal(t, "https://cdn.example/b.png", *repository.profiles[first.ID].AvatarURL)
	assert.Equal(t, 1, repository.updates)
}

func TestService_FindOrCreate_Admin(t *testing.T) {
	repository := newFakeRepository()
	listed := NewService(slog.Default(), repository, []string{"1001"})
	unlisted := NewService(slog.Default(), repository, nil)

	profile, err := listed.FindOrCreate(context.Background(), goth.User{UserID: "1001", NickName: "maverick"})
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)

	profile, err = unlisted.FindOrCreate(context.Background(), goth.User{UserID: "1001", NickName: "maverick"})
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin, "want sign-in to never revoke the admin flag")
}

func TestService_FindOrCreate_PromotesExisting(t *testing.T) {
	repository := newFakeRepository()
	_, err := NewService(slog.Default(), repository, nil).FindOrCreate(context.Background(), goth.User{UserID: "1001", NickName: "maverick"})
	require.NoError(t, err)

	profile, err := NewService(slog.Default(), repository, []string{"1001"}).FindOrCreate(context.Background(), goth.User{UserID: "1001", NickName: "maverick"})

	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)
	assert.True(t, repository.profiles[profile.ID].IsAdmin)
}

func TestService_CompleteOnboarding(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(slog.Default(), repository, nil)
	created, err := service.FindOrCreate(context.Background(), goth.User{UserID: "1001"})
	require.NoError(t, err)

	profile, err := service.CompleteOnboarding(context.Background(), created.ID, "  Maverick ")

	require.NoError(t, err)
	assert.Equal(t, "Maverick", *profile.DisplayName)
	assert.False(t, profile.NeedsOnboarding())

	profile, err = service.CompleteOnboarding(context.Background(), created.ID, "   ")

	require.NoError(t, err)
	assert.Nil(t, profile.DisplayName)
}

func TestService_CompleteOnboarding_NotFound(t *testing.T) {
	service := NewService(slog.Default(), newFakeRepository(), nil)

	_, err := service.CompleteOnboarding(context.Background(), uuid.New(), "Maverick")

	require.Error(t, err)
	assert.True(t, errdef.IsNotFound(err))
}

type fakeRepository struct {
	profiles map[uuid.UUID]*model.Profile
	updates  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{profiles: map[uuid.UUID]*model.Profile{}}
}

func (r *fakeRepository) FindOrCreate(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	for _, p := range r.profiles {
		if *p.DiscordID == *profile.DiscordID {
			found := *p
			return &found, nil
		}
	}
	created := *profile
	created.ID = uuid.New()
	r.profiles[created.ID] = &created
	found := created
	return &found, nil
}

func (r *fakeRepository) UpdateAccount(_ context.Context, profile *model.Profile) error {
	stored, ok := r.profiles[profile.ID]
	if !ok {
		return errdef.NewNotFound("failed to find profile with id %q", profile.ID)
	}
	r.updates++
	stored.DiscordUsername = profile.DiscordUsername
	stored.AvatarURL = profile.AvatarURL
	stored.IsAdmin = profile.IsAdmin
	return nil
}

func (r *fakeRepository) CompleteOnboarding(_ context.Context, id uuid.UUID, displayName *string, completedAt time.Time) error {
	stored, ok := r.profiles[id]
	if !ok {
		return errdef.NewNotFound("failed to find profile with id %q", id)
	}
	stored.DisplayName = displayName
	stored.OnboardingCompletedAt = &completedAt
	return nil
}

func (r *fakeRepository) FindById(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	stored, ok := r.profiles[id]
	if !ok {
		return nil, errdef.NewNotFound("failed to find profile with id %q", id)
	}
	found := *stored
	return &found, nil
}
