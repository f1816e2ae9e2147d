package events

import "time"

// Event codes emitted by the chat core.
const (
	TypeSessionCreated = "SESSION_CREATED"
	TypeChatCompleted  = "CHAT_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the standard Event implementation.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSessionCreated marks the minting of a fresh conversation session.
func NewSessionCreated(sessionID string) Event {
	return BaseEvent{
		Type:       TypeSessionCreated,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: time.Now(),
	}
}

// NewChatCompleted records a fully streamed assistant turn.
func NewChatCompleted(sessionID string, turn int, responseChars int, quickReply string, durationMs int64) Event {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"turn":           turn,
			"response_chars": responseChars,
			"quick_reply":    quickReply,
			"duration_ms":    durationMs,
		},
		OccurredAt: time.Now(),
	}
}
