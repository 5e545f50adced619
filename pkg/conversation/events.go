package conversation

import "time"

type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventMessageUpdated  EventType = "message_updated"
	EventMessageRemoved  EventType = "message_removed"
	EventTranscriptReset EventType = "transcript_reset"
	EventStatusChanged   EventType = "status_changed"
	EventBusyChanged     EventType = "busy_changed"
	EventWarning         EventType = "warning"
	EventError           EventType = "error"
)

// Event describes one change to the session. Index refers to the transcript
// position for message events.
type Event struct {
	Type       EventType `json:"type"`
	Index      int       `json:"index"`
	Message    *Message  `json:"message,omitempty"`
	Transcript []Message `json:"transcript,omitempty"`
	Notice     string    `json:"notice,omitempty"`
	Status     Status    `json:"status,omitempty"`
	Busy       bool      `json:"busy"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Observer receives events in the order they happen. OnEvent is called with
// the controller lock held and must not call back into the controller.
type Observer interface {
	OnEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) OnEvent(Event) {}
