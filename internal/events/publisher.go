package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Topics published by the service.
const (
	TopicAnnouncements = "techfest.announcements"
	TopicEvents        = "techfest.events"
	TopicRegistrations = "techfest.registrations"
	TopicWinners       = "techfest.winners"
)

// Event types.
const (
	TypeAnnouncementCreated = "announcement.created"
	TypeEventLive           = "event.live"
	TypeEventEnded          = "event.ended"
	TypeRegistrationCreated = "registration.created"
	TypeWinnersDeclared     = "winners.declared"
)

// Event is the envelope for everything published to the bus. Data holds the
// type-specific payload and is JSON-marshalled on the wire.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps the envelope fields.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "techfest-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes events to a topic. Implementations: Kafka for
// cross-service fan-out, the in-process channel bus for SSE streaming, and
// a mock for tests.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// Payloads carried in Event.Data.

type AnnouncementCreatedEvent struct {
	AnnouncementID uint   `json:"announcement_id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Priority       string `json:"priority"`
	Author         string `json:"author"`
}

type EventStatusEvent struct {
	EventID uint   `json:"event_id"`
	Title   string `json:"title"`
	IsLive  bool   `json:"is_live"`
}

type RegistrationCreatedEvent struct {
	RegistrationID uint   `json:"registration_id"`
	EventID        uint   `json:"event_id"`
	EventTitle     string `json:"event_title"`
	UserID         string `json:"user_id"`
}

type WinnersDeclaredEvent struct {
	EventID    uint     `json:"event_id"`
	EventTitle string   `json:"event_title"`
	UserIDs    []string `json:"user_ids"`
}
