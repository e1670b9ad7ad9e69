// Package notify publishes best-effort domain events. Delivery failures never
// affect the ledger mutation that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// EventType names a domain event. It doubles as the AMQP routing key.
type EventType string

const (
	ObligationCreated EventType = "obligation.created"
	ObligationSettled EventType = "obligation.settled"
	MemberJoined      EventType = "member.joined"
	MemberRemoved     EventType = "member.removed"
)

// Event is the payload handed to a Notifier.
type Event struct {
	Type EventType `json:"type"`
	// ActorID is the user who caused the event.
	ActorID string `json:"actorId"`
	// ScopeID is the group or family the event happened in.
	ScopeID string `json:"scopeId"`
	// SubjectID is the transaction or member the event is about.
	SubjectID string `json:"subjectId"`
	// Recipients are user IDs or invitee emails to inform.
	Recipients []string  `json:"recipients,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier accepts events. Implementations may fail; callers log and move on.
//
//go:generate mockgen -destination=mocks/mock_notifier.go -package=mocks -source=notify.go Notifier
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to a slog logger. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a LogNotifier; a nil logger means slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the event at info level.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	n.logger.InfoContext(ctx, "Notification",
		"type", event.Type,
		"actor", event.ActorID,
		"scope", event.ScopeID,
		"subject", event.SubjectID,
		"recipients", len(event.Recipients),
	)
	return nil
}

// Nop discards every event.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Event) error { return nil }
