package signup

import (
	"context"
	"log/slog"
	"strings"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/metrics"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

const (
	alreadySignedUp = "You are already signed up for this event."
	notSignedUp     = "You are not signed up for this event."
)

func NewService(logger *slog.Logger, repository Repository, eventService eventService, serializable bool) *Service {
	return &Service{
		logger:       logger,
		repository:   repository,
		eventService: eventService,
		serializable: serializable,
	}
}

type Service struct {
	logger       *slog.Logger
	repository   Repository
	eventService eventService
	serializable bool
}

type Repository interface {
	Transaction(ctx context.Context, serializable bool, fn func(ctx context.Context, repository Repository) error) error
	Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	CountConfirmed(ctx context.Context, eventID uuid.UUID) (int64, error)
	MaxWaitlistPosition(ctx context.Context, eventID uuid.UUID) (int, error)
	Create(ctx context.Context, signup *model.Signup) error
	Delete(ctx context.Context, eventID, userID uuid.UUID) error
	Find(ctx context.Context, eventID, userID uuid.UUID) (*model.Signup, error)
	Update(ctx context.Context, signup *model.Signup) error
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Signup, error)
	FindByProfile(ctx context.Context, userID uuid.UUID) ([]model.Signup, error)
}

type eventService interface {
	FindById(ctx context.Context, id uuid.UUID) (*model.Event, error)
}

// Details are the volunteer form fields of a signup
type Details struct {
	Role                   *model.SignupRole `json:"role"`
	VolunteerStatus        *string           `json:"volunteerStatus"`
	Phone                  *string           `json:"phone"`
	IsLocal                *bool             `json:"isLocal"`
	FlightVoucherRequested *bool             `json:"flightVoucherRequested"`
	AvailabilityNotes      *string           `json:"availabilityNotes"`
	TravelNotes            *string           `json:"travelNotes"`
}

// normalize trims the free text fields, turning blank ones into nil, and defaults the role to
// Volunteer.
func (d Details) normalize() (Details, error) {
	role := model.RoleVolunteer
	if d.Role != nil && strings.TrimSpace(string(*d.Role)) != "" {
		role = model.SignupRole(strings.TrimSpace(string(*d.Role)))
		if !slices.Contains(model.SignupRoles, role) {
			return Details{}, errdef.NewBadRequest("Invalid role %q.", role)
		}
	}
	d.Role = &role
	d.VolunteerStatus = trimmed(d.VolunteerStatus)
	d.Phone = trimmed(d.Phone)
	d.AvailabilityNotes = trimmed(d.AvailabilityNotes)
	d.TravelNotes = trimmed(d.TravelNotes)
	return d, nil
}

func (d Details) apply(signup *model.Signup) {
	signup.Role = d.Role
	signup.VolunteerStatus = d.VolunteerStatus
	signup.Phone = d.Phone
	signup.IsLocal = d.IsLocal
	signup.FlightVoucherRequested = d.FlightVoucherRequested
	signup.AvailabilityNotes = d.AvailabilityNotes
	signup.TravelNotes = d.TravelNotes
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Result of signing up. Position is nil unless the signup landed on the waitlist.
type Result struct {
	Signup   *model.Signup `json:"signup"`
	Waitlist bool          `json:"waitlist"`
	Position *int          `json:"position"`
}

// SignUp signs the profile up for the event. The signup is confirmed while the event has fewer
// confirmed signups than its capacity, otherwise it is appended to the waitlist.
func (s Service) SignUp(ctx context.Context, eventID, userID uuid.UUID, details Details) (*Result, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}

	event, err := s.eventService.FindById(ctx, eventID)
	if err != nil {
		return nil, err
	}

	signup := &model.Signup{EventID: eventID, UserID: userID}
	details.apply(signup)

	err = s.repository.Transaction(ctx, s.serializable, func(ctx context.Context, repository Repository) error {
		exists, err := repository.Exists(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if exists {
			return errdef.NewDuplicated(alreadySignedUp)
		}

		confirmed, err := repository.CountConfirmed(ctx, eventID)
		if err != nil {
			return err
		}

		if confirmed >= int64(event.Capacity) {
			last, err := repository.MaxWaitlistPosition(ctx, eventID)
			if err != nil {
				return err
			}
			position := last + 1
			signup.WaitlistPosition = &position
		}

		return repository.Create(ctx, signup)
	})
	if err != nil {
		if errdef.IsDuplicated(err) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	outcome := "confirmed"
	if signup.IsWaitlisted() {
		outcome = "waitlisted"
	}
	metrics.SignupsTotal.WithLabelValues(outcome).Inc()
	s.logger.InfoContext(ctx, "Signed up", "event", eventID, "outcome", outcome, "waitlistPosition", signup.WaitlistPosition)

	return &Result{
		Signup:   signup,
		Waitlist: signup.IsWaitlisted(),
		Position: signup.WaitlistPosition,
	}, nil
}

// Leave removes the profile's signup. Remaining waitlist positions are left as they are.
func (s Service) Leave(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.repository.Delete(ctx, eventID, userID)
}

// Update changes the form details of a signup. The waitlist position is never touched.
func (s Service) Update(ctx context.Context, eventID, userID uuid.UUID, details Details) (*model.Signup, error) {
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}

	signup, err := s.repository.Find(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	details.apply(signup)
	if err := s.repository.Update(ctx, signup); err != nil {
		return nil, err
	}
	return signup, nil
}

func (s Service) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Signup, error) {
	return s.repository.FindByEvent(ctx, eventID)
}

func (s Service) FindByProfile(ctx context.Context, userID uuid.UUID) ([]model.Signup, error) {
	return s.repository.FindByProfile(ctx, userID)
}

// Split separates signups into the confirmed list ordered by signup time and the waitlist ordered
// by position then signup time.
func Split(signups []model.Signup) (confirmed []model.Signup, waitlist []model.Signup) {
	for _, signup := range signups {
		if signup.IsWaitlisted() {
			waitlist = append(waitlist, signup)
		} else {
			confirmed = append(confirmed, signup)
		}
	}

	slices.SortStableFunc(confirmed, func(a, b model.Signup) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	slices.SortStableFunc(waitlist, func(a, b model.Signup) int {
		if *a.WaitlistPosition != *b.WaitlistPosition {
			return *a.WaitlistPosition - *b.WaitlistPosition
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return confirmed, waitlist
}
