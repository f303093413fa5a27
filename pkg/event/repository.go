package event

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

// eventColumns are the columns an update writes, the schedule is replaced separately
var eventColumns = []string{
	"Title", "Slug", "StartDate", "EndDate", "StartTime", "EndTime", "Timezone", "Location",
	"Description", "ExternalLink", "ImageURL", "VolunteerDetails", "Capacity",
}

func (r repository) Create(ctx context.Context, event *model.Event) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %v", err)
	}
	return nil
}

// Update writes the event's fields and replaces its schedule rows.
func (r repository) Update(ctx context.Context, event *model.Event) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		db := tx.
			Model(event).
			Select(eventColumns).
			Omit(clause.Associations).
			Updates(event)
		if db.Error != nil {
			return fmt.Errorf("failed to update event: %v", db.Error)
		} else if db.RowsAffected < 1 {
			return errdef.NewNotFound("event not found by id: %s", event.ID)
		}

		if err := tx.Where("event_id = ?", event.ID).Delete(&model.ScheduleRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete schedule of event %q: %v", event.ID, err)
		}

		if len(event.Schedule) == 0 {
			return nil
		}
		for i := range event.Schedule {
			event.Schedule[i].ID = 0
			event.Schedule[i].EventID = event.ID
		}
		if err := tx.Create(&event.Schedule).Error; err != nil {
			return fmt.Errorf("failed to create schedule of event %q: %v", event.ID, err)
		}
		return nil
	})
}

// Delete removes the event. Schedule rows and signups are removed by the database.
func (r repository) Delete(ctx context.Context, id uuid.UUID) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	db := r.db.WithContext(ctx).Delete(&model.Event{}, "id = ?", id)
	if db.Error != nil {
		return fmt.Errorf("failed to delete event with id %q: %v", id, db.Error)
	} else if db.RowsAffected < 1 {
		return errdef.NewNotFound("event not found by id: %s", id)
	}
	return nil
}

func (r repository) FindById(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Schedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("event not found by id: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %v", err)
	}
	return event, nil
}

// Filter restricts which events are listed. From and To select events overlapping the range.
type Filter struct {
	From       string
	To         string
	Descending bool
}

func (r repository) FindAll(ctx context.Context, filter Filter) ([]model.Event, error) {
	db := r.db.WithContext(ctx)
	if filter.From != "" {
		db = db.Where("end_date >= ?", filter.From)
	}
	if filter.To != "" {
		db = db.Where("start_date <= ?", filter.To)
	}

	order := "start_date ASC"
	if filter.Descending {
		order = "start_date DESC"
	}

	var events []model.Event
	err := db.
		Order(order).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %v", err)
	}
	return events, nil
}

// Counts of an event's signups
type Counts struct {
	EventID       uuid.UUID
	SignupCount   int64
	WaitlistCount int64
}

// Counts returns the number of confirmed and waitlisted signups per event. Events without signups
// are absent from the result.
func (r repository) Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error) {
	result := make(map[uuid.UUID]Counts, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var counts []Counts
	err := r.db.
		WithContext(ctx).
		Model(&model.Signup{}).
		Select("event_id, " +
			"COUNT(*) FILTER (WHERE waitlist_position IS NULL) AS signup_count, " +
			"COUNT(*) FILTER (WHERE waitlist_position IS NOT NULL) AS waitlist_count").
		Where("event_id IN ?", ids).
		Group("event_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count signups: %v", err)
	}

	for _, c := range counts {
		result[c.EventID] = c
	}
	return result, nil
}
