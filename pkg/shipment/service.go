package shipment

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/metrics"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/asianpilots/volunteer-manager/pkg/tracking"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

func NewService(logger *slog.Logger, repository Repository, tracker tracker) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		tracker:    tracker,
	}
}

type Service struct {
	logger     *slog.Logger
	repository Repository
	tracker    tracker
}

type Repository interface {
	Create(ctx context.Context, shipment *model.Shipment) error
	Update(ctx context.Context, shipment *model.Shipment) error
	UpdateTracking(ctx context.Context, shipment *model.Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	FindAll(ctx context.Context) ([]model.Shipment, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Shipment, error)
	FindAllTracking(ctx context.Context) ([]model.Shipment, error)
}

type tracker interface {
	Track(ctx context.Context, trackingNumber string, carrier model.Carrier) (*tracking.Result, error)
}

// Input is the editable part of a shipment
type Input struct {
	TrackingNumber string     `json:"trackingNumber"`
	Carrier        string     `json:"carrier"`
	EventID        *uuid.UUID `json:"eventId"`
	ToSignupID     *uuid.UUID `json:"toSignupId"`
	Notes          *string    `json:"notes"`
}

func (i Input) carrier() (model.Carrier, error) {
	carrier := model.Carrier(strings.ToUpper(strings.TrimSpace(i.Carrier)))
	if carrier == "" {
		return model.CarrierUSPS, nil
	}
	if !slices.Contains(model.Carriers, carrier) {
		return "", errdef.NewBadRequest("Invalid carrier %q.", i.Carrier)
	}
	return carrier, nil
}

func (i Input) notes() *string {
	if i.Notes == nil {
		return nil
	}
	notes := strings.TrimSpace(*i.Notes)
	if notes == "" {
		return nil
	}
	return &notes
}

func (s Service) Create(ctx context.Context, input Input, senderID uuid.UUID) (*model.Shipment, error) {
	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	if trackingNumber == "" {
		return nil, errdef.NewBadRequest("Tracking number is required.")
	}

	carrier, err := input.carrier()
	if err != nil {
		return nil, err
	}

	shipment := &model.Shipment{
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
		EventID:        input.EventID,
		ToSignupID:     input.ToSignupID,
		FromProfileID:  &senderID,
		Notes:          input.notes(),
	}

	err = s.repository.Create(ctx, shipment)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Shipment created", "shipmentId", shipment.ID, "carrier", carrier)
	return shipment, nil
}

// Update edits carrier, notes and links. The tracking number can't be changed.
func (s Service) Update(ctx context.Context, id uuid.UUID, input Input) (*model.Shipment, error) {
	carrier, err := input.carrier()
	if err != nil {
		return nil, err
	}

	shipment := &model.Shipment{
		ID:         id,
		Carrier:    carrier,
		EventID:    input.EventID,
		ToSignupID: input.ToSignupID,
		Notes:      input.notes(),
	}
	err = s.repository.Update(ctx, shipment)
	if err != nil {
		return nil, err
	}

	return s.repository.FindById(ctx, id)
}

func (s Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repository.Delete(ctx, id)
}

func (s Service) FindById(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return s.repository.FindById(ctx, id)
}

func (s Service) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Shipment, error) {
	return s.repository.FindByEvent(ctx, eventID)
}

// View is a shipment with its tracking history prepared for display
type View struct {
	model.Shipment
	Events       []tracking.DisplayEvent `json:"events"`
	LatestUpdate string                  `json:"latestUpdate,omitempty"`
	Summary      *tracking.Summary       `json:"summary,omitempty"`
}

func newView(shipment model.Shipment) View {
	view := View{
		Shipment: shipment,
		Events:   tracking.DisplayEvents(shipment.StatusRaw),
	}
	if view.Events == nil {
		view.Events = []tracking.DisplayEvent{}
	}
	view.LatestUpdate = tracking.LatestUpdate(view.Events)
	if len(view.Events) == 0 && len(shipment.StatusRaw) > 0 {
		summary := tracking.ShipmentSummary(shipment.StatusRaw)
		view.Summary = &summary
	}
	return view
}

// FindAll returns all shipments newest first
func (s Service) FindAll(ctx context.Context) ([]View, error) {
	shipments, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]View, len(shipments))
	for i, shipment := range shipments {
		views[i] = newView(shipment)
	}
	return views, nil
}

// Refresh looks up the current tracking status. If the lookup fails the stored status is kept.
func (s Service) Refresh(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	shipment, err := s.repository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.tracker.Track(ctx, shipment.TrackingNumber, shipment.Carrier)
	if err != nil {
		metrics.TrackingRefreshesTotal.WithLabelValues("refresh", "failure").Inc()
		s.logger.WarnContext(ctx, "Tracking lookup failed", "shipmentId", id, "error", err)
		return nil, err
	}

	status := result.Status
	now := time.Now()
	shipment.Status = &status
	shipment.StatusRaw = result.Raw
	shipment.ExpectedDeliveryDate = result.ExpectedDeliveryDate
	shipment.DeliveredAt = result.DeliveredAt
	shipment.LastCheckedAt = &now
	err = s.repository.UpdateTracking(ctx, shipment)
	if err != nil {
		return nil, err
	}

	metrics.TrackingRefreshesTotal.WithLabelValues("refresh", "success").Inc()
	s.logger.InfoContext(ctx, "Shipment refreshed", "shipmentId", id, "status", status)
	return shipment, nil
}

// HandleWebhook merges pushed tracking updates into the matching shipments. Only a body that is not
// JSON is rejected. Malformed items and trackings for unknown shipments are skipped.
func (s Service) HandleWebhook(ctx context.Context, body []byte) error {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return errdef.NewBadRequest("Invalid JSON")
	}

	for _, item := range tracking.WebhookTrackings(payload) {
		trackingNumber := item.TrackingNumber()
		if tracking.NormalizeTrackingNumber(trackingNumber) == "" {
			continue
		}

		shipment, err := s.match(ctx, trackingNumber)
		if err != nil {
			return err
		}
		if shipment == nil {
			s.logger.InfoContext(ctx, "Webhook for unknown shipment", "trackingNumber", trackingNumber)
			continue
		}

		events := tracking.MergeEvents(tracking.StoredEvents(shipment.StatusRaw), item.Events)
		computed := tracking.ComputeStatus(item.Shipment, events)
		raw, err := tracking.WebhookRaw(item.Tracker, item.Shipment, events)
		if err != nil {
			return err
		}

		now := time.Now()
		shipment.Status = &computed.Status
		shipment.StatusRaw = raw
		shipment.ExpectedDeliveryDate = computed.ExpectedDeliveryDate
		shipment.DeliveredAt = computed.DeliveredAt
		shipment.LastCheckedAt = &now
		err = s.repository.UpdateTracking(ctx, shipment)
		if err != nil {
			metrics.TrackingRefreshesTotal.WithLabelValues("webhook", "failure").Inc()
			return err
		}

		metrics.TrackingRefreshesTotal.WithLabelValues("webhook", "success").Inc()
		s.logger.InfoContext(ctx, "Shipment updated from webhook", "shipmentId", shipment.ID, "status", computed.Status)
	}

	return nil
}

// match finds the shipment by exact tracking number, falling back to comparing normalized numbers
func (s Service) match(ctx context.Context, trackingNumber string) (*model.Shipment, error) {
	shipment, err := s.repository.FindByTrackingNumber(ctx, trackingNumber)
	if err == nil {
		return shipment, nil
	}
	if !errdef.IsNotFound(err) {
		return nil, err
	}

	shipments, err := s.repository.FindAllTracking(ctx)
	if err != nil {
		return nil, err
	}
	normalized := tracking.NormalizeTrackingNumber(trackingNumber)
	for i := range shipments {
		if tracking.NormalizeTrackingNumber(shipments[i].TrackingNumber) == normalized {
			return &shipments[i], nil
		}
	}
	return nil, nil
}
