package signup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

// postgres SQLSTATE serialization_failure
const serializationFailure = "40001"

// Transaction runs fn against a repository bound to a serializable transaction. Without
// serializable fn runs directly against the database.
func (r repository) Transaction(ctx context.Context, serializable bool, fn func(ctx context.Context, repository Repository) error) error {
	if !serializable {
		return fn(ctx, r)
	}

	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
		return errdef.NewConflict("Too many volunteers signed up at once. Please try again.")
	}
	return err
}

func (r repository) Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.
		WithContext(ctx).
		Model(&model.Signup{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check signup: %v", err)
	}
	return count > 0, nil
}

func (r repository) CountConfirmed(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.
		WithContext(ctx).
		Model(&model.Signup{}).
		Where("event_id = ? AND waitlist_position IS NULL", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed signups: %v", err)
	}
	return count, nil
}

// MaxWaitlistPosition returns the highest waitlist position of the event or 0 if nobody is
// waitlisted.
func (r repository) MaxWaitlistPosition(ctx context.Context, eventID uuid.UUID) (int, error) {
	var signups []model.Signup
	err := r.db.
		WithContext(ctx).
		Select("waitlist_position").
		Where("event_id = ? AND waitlist_position IS NOT NULL", eventID).
		Order("waitlist_position DESC").
		Limit(1).
		Find(&signups).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find waitlist position: %v", err)
	}
	if len(signups) == 0 || signups[0].WaitlistPosition == nil {
		return 0, nil
	}
	return *signups[0].WaitlistPosition, nil
}

func (r repository) Create(ctx context.Context, signup *model.Signup) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(signup).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated(alreadySignedUp)
	}
	return err
}

func (r repository) Delete(ctx context.Context, eventID, userID uuid.UUID) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	db := r.db.
		WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&model.Signup{})
	if db.Error != nil {
		return fmt.Errorf("failed to delete signup: %v", db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound(notSignedUp)
	}
	return nil
}

func (r repository) Find(ctx context.Context, eventID, userID uuid.UUID) (*model.Signup, error) {
	var signup *model.Signup
	err := r.db.
		WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&signup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound(notSignedUp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find signup: %v", err)
	}
	return signup, nil
}

func (r repository) Update(ctx context.Context, signup *model.Signup) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.
		WithContext(ctx).
		Model(signup).
		Select("Role", "VolunteerStatus", "Phone", "IsLocal", "FlightVoucherRequested", "AvailabilityNotes", "TravelNotes").
		Updates(signup).Error
	if err != nil {
		return fmt.Errorf("failed to update signup: %v", err)
	}
	return nil
}

// FindByEvent returns the event's signups with their profiles, confirmed first in signup order
// followed by the waitlist in position order.
func (r repository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Signup, error) {
	var signups []model.Signup
	err := r.db.
		WithContext(ctx).
		Preload("Profile").
		Where("event_id = ?", eventID).
		Order("waitlist_position ASC NULLS FIRST").
		Order("created_at ASC").
		Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find signups of event %q: %v", eventID, err)
	}
	return signups, nil
}

// FindByProfile returns the profile's signups with their events, newest first.
func (r repository) FindByProfile(ctx context.Context, userID uuid.UUID) ([]model.Signup, error) {
	var signups []model.Signup
	err := r.db.
		WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&signups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find signups of profile %q: %v", userID, err)
	}
	return signups, nil
}
