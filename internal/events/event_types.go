package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRosterReplaced  EventType = "roster_replaced"
	EventExportsImported EventType = "exports_imported"
	EventMessagesDeleted EventType = "messages_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RosterReplacedPayload payload.
type RosterReplacedPayload struct {
	PreviousCount int `json:"previous_count"`
	Count         int `json:"count"`
}

// ExportsImportedPayload payload.
type ExportsImportedPayload struct {
	Files   []string `json:"files"`
	Threads int      `json:"threads"`
	Skipped []string `json:"skipped,omitempty"`
}

// MessagesDeletedPayload payload.
type MessagesDeletedPayload struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Deleted int64     `json:"deleted"`
}
