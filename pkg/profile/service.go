package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/exp/slices"
)

func NewService(logger *slog.Logger, repository Repository, adminDiscordIDs []string) *Service {
	return &Service{
		logger:          logger,
		repository:      repository,
		adminDiscordIDs: adminDiscordIDs,
	}
}

type Service struct {
	logger          *slog.Logger
	repository      Repository
	adminDiscordIDs []string
}

type Repository interface {
	FindOrCreate(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	UpdateAccount(ctx context.Context, profile *model.Profile) error
	CompleteOnboarding(ctx context.Context, id uuid.UUID, displayName *string, completedAt time.Time) error
	FindById(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

func (s Service) FindById(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.repository.FindById(ctx, id)
}

// FindOrCreate returns the profile of the signed-in Discord account, creating it on first sign-in.
// The Discord username and avatar are refreshed on every sign-in. Accounts listed in
// ADMIN_DISCORD_IDS get the admin flag. Sign-in never revokes it.
func (s Service) FindOrCreate(ctx context.Context, user goth.User) (*model.Profile, error) {
	discordID := user.UserID
	isAdmin := slices.Contains(s.adminDiscordIDs, discordID)
	account := &model.Profile{
		DiscordID:       &discordID,
		DiscordUsername: nonEmpty(user.NickName, user.Name),
		AvatarURL:       nonEmpty(user.AvatarURL),
		IsAdmin:         isAdmin,
	}

	profile, err := s.repository.FindOrCreate(ctx, account)
	if err != nil {
		return nil, err
	}

	if !changed(profile, account) {
		return profile, nil
	}

	profile.DiscordUsername = account.DiscordUsername
	profile.AvatarURL = account.AvatarURL
	profile.IsAdmin = profile.IsAdmin || isAdmin
	err = s.repository.UpdateAccount(ctx, profile)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Profile refreshed from Discord", "profileId", profile.ID, "isAdmin", profile.IsAdmin)
	return profile, nil
}

func changed(profile, account *model.Profile) bool {
	return !equal(profile.DiscordUsername, account.DiscordUsername) ||
		!equal(profile.AvatarURL, account.AvatarURL) ||
		(account.IsAdmin && !profile.IsAdmin)
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nonEmpty(values ...string) *string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return &value
		}
	}
	return nil
}

// CompleteOnboarding sets the display name, a blank name clears it, and marks onboarding done
func (s Service) CompleteOnboarding(ctx context.Context, id uuid.UUID, displayName string) (*model.Profile, error) {
	err := s.repository.CompleteOnboarding(ctx, id, nonEmpty(displayName), time.Now())
	if err != nil {
		return nil, err
	}
	return s.repository.FindById(ctx, id)
}
