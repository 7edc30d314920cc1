package infrastructure

import (
	"fmt"

	"dailybet/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeBalanceChange:     "users.balance_changed",
	events.EventTypeDailyLineUpdated:  "lines.updated",
	events.EventTypeLineResolved:      "lines.resolved",
	events.EventTypeBetPlaced:         "betting.placed",
	events.EventTypeBetVolumeUpdated:  "betting.volume_updated",
	events.EventTypeWithdrawalUpdated: "wallet.withdrawal_updated",
	events.EventTypeDepositVerified:   "wallet.deposit_verified",
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByEventType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"users.balance_changed",
		"lines.updated",
		"lines.resolved",
		"betting.placed",
		"betting.volume_updated",
		"wallet.withdrawal_updated",
		"wallet.deposit_verified",
	}
}
