package tracking

import (
	"regexp"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/pkg/model"
)

// Ship24 status milestones
const (
	MilestoneInfoReceived       = "info_received"
	MilestonePending            = "pending"
	MilestoneInTransit          = "in_transit"
	MilestoneOutForDelivery     = "out_for_delivery"
	MilestoneFailedAttempt      = "failed_attempt"
	MilestoneAvailableForPickup = "available_for_pickup"
	MilestoneDelivered          = "delivered"
	MilestoneException          = "exception"
)

var milestoneStatus = map[string]model.ShipmentStatus{
	MilestoneInfoReceived:       model.StatusPreShipment,
	MilestonePending:            model.StatusPreShipment,
	MilestoneInTransit:          model.StatusInTransit,
	MilestoneOutForDelivery:     model.StatusOutForDelivery,
	MilestoneFailedAttempt:      model.StatusOutForDelivery,
	MilestoneAvailableForPickup: model.StatusOutForDelivery,
	MilestoneDelivered:          model.StatusDelivered,
	MilestoneException:          model.StatusException,
}

// MapStatusMilestone maps a provider milestone to a shipment status. Unknown and empty milestones
// map to [model.StatusUnknown].
func MapStatusMilestone(milestone string) model.ShipmentStatus {
	if status, ok := milestoneStatus[strings.ToLower(milestone)]; ok {
		return status
	}
	return model.StatusUnknown
}

// rules are evaluated in order, the first matching rule wins
var inferRules = []struct {
	milestone string
	phrases   []string
}{
	{MilestoneDelivered, []string{"delivered", "delivery complete"}},
	{MilestoneOutForDelivery, []string{"out for delivery"}},
	{MilestoneInTransit, []string{"in transit", "in possession", "accepted", "departed", "arrived"}},
	{MilestoneInfoReceived, []string{"pre-shipment", "info received", "label"}},
	{MilestoneException, []string{"exception", "return", "failed"}},
}

// InferMilestone guesses a milestone from a courier's free text status such as "USPS in possession
// of the item". It returns "" if no rule matches.
func InferMilestone(status string) string {
	s := strings.ToLower(status)
	for _, rule := range inferRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(s, phrase) {
				return rule.milestone
			}
		}
	}
	return ""
}

// Computed is the status derived from a shipment and its events.
type Computed struct {
	Status               model.ShipmentStatus
	ExpectedDeliveryDate *string
	DeliveredAt          *time.Time
}

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ComputeStatus derives the status from the shipment level milestone if there is one, otherwise from
// the chronologically latest event. Events may come in any order.
func ComputeStatus(shipment map[string]any, events []Event) Computed {
	milestone := asString(shipment["statusMilestone"])
	if milestone == "" && len(events) > 0 {
		latest := latestEvent(events)
		milestone = asString(latest["statusMilestone"])
		if milestone == "" {
			milestone = InferMilestone(asString(latest["status"]))
		}
	}

	computed := Computed{Status: MapStatusMilestone(milestone)}

	expected := asString(firstPresent(shipment, "estimatedDeliveryDate", "expectedDeliveryDate"))
	if date, _, _ := strings.Cut(expected, "T"); dateOnlyPattern.MatchString(date) {
		computed.ExpectedDeliveryDate = &date
	}

	for _, event := range events {
		if !strings.EqualFold(asString(event["statusMilestone"]), MilestoneDelivered) {
			continue
		}
		occurredAt := asString(event["occurrenceDatetime"])
		if occurredAt == "" {
			continue
		}
		if t, ok := ParseTime(occurredAt); ok {
			computed.DeliveredAt = &t
		}
		break
	}

	return computed
}

// latestEvent returns the event with the latest occurrence time. Events without a usable time only
// win if no event has one, in which case the first event is returned.
func latestEvent(events []Event) Event {
	latest := events[0]
	latestTime, hasLatest := ParseTime(latest.first("occurrenceDatetime", "datetime"))
	for _, event := range events[1:] {
		t, ok := ParseTime(event.first("occurrenceDatetime", "datetime"))
		if !ok {
			continue
		}
		if !hasLatest || t.After(latestTime) {
			latest, latestTime, hasLatest = event, t, true
		}
	}
	return latest
}
