package shipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) Create(ctx context.Context, shipment *model.Shipment) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(shipment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("A shipment with tracking number %q already exists.", shipment.TrackingNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to create shipment: %v", err)
	}
	return nil
}

// Update writes the fields an administrator can edit
func (r repository) Update(ctx context.Context, shipment *model.Shipment) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	db := r.db.
		WithContext(ctx).
		Model(shipment).
		Select("Carrier", "Notes", "EventID", "ToSignupID").
		Omit(clause.Associations).
		Updates(shipment)
	if db.Error != nil {
		return fmt.Errorf("failed to update shipment: %v", db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("Shipment not found.")
	}
	return nil
}

// UpdateTracking writes the result of a tracking lookup or webhook delivery
func (r repository) UpdateTracking(ctx context.Context, shipment *model.Shipment) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.
		WithContext(ctx).
		Model(shipment).
		Select("Status", "StatusRaw", "ExpectedDeliveryDate", "DeliveredAt", "LastCheckedAt").
		Omit(clause.Associations).
		Updates(shipment).Error
	if err != nil {
		return fmt.Errorf("failed to update tracking of shipment %q: %v", shipment.ID, err)
	}
	return nil
}

func (r repository) Delete(ctx context.Context, id uuid.UUID) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	db := r.db.WithContext(ctx).Delete(&model.Shipment{}, "id = ?", id)
	if db.Error != nil {
		return fmt.Errorf("failed to delete shipment with id %q: %v", id, db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("Shipment not found.")
	}
	return nil
}

func (r repository) withAssociations() *gorm.DB {
	return r.db.
		Preload("Event").
		Preload("ToSignup.Profile").
		Preload("FromProfile")
}

func (r repository) FindById(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var shipment *model.Shipment
	err := r.withAssociations().
		WithContext(ctx).
		First(&shipment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("Shipment not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %v", err)
	}
	return shipment, nil
}

// FindAll returns all shipments newest first
func (r repository) FindAll(ctx context.Context) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.withAssociations().
		WithContext(ctx).
		Order("created_at DESC").
		Find(&shipments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find shipments: %v", err)
	}
	return shipments, nil
}

func (r repository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.
		WithContext(ctx).
		Preload("ToSignup.Profile").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&shipments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find shipments of event %q: %v", eventID, err)
	}
	return shipments, nil
}

// FindByTrackingNumber finds the shipment with exactly the given tracking number
func (r repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.
		WithContext(ctx).
		Where("tracking_number = ?", trackingNumber).
		Limit(1).
		Find(&shipments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment by tracking number: %v", err)
	}
	if len(shipments) == 0 {
		return nil, errdef.NewNotFound("no shipment with tracking number %q", trackingNumber)
	}
	return &shipments[0], nil
}

// FindAllTracking returns every shipment with just its id, tracking number and raw status.
func (r repository) FindAllTracking(ctx context.Context) ([]model.Shipment, error) {
	var shipments []model.Shipment
	err := r.db.
		WithContext(ctx).
		Select("id", "tracking_number", "status_raw").
		Find(&shipments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find shipments: %v", err)
	}
	return shipments, nil
}
