// Package conversation drives a single legal-assistant chat: it owns the
// transcript, attaches uploaded file context, talks to the model, runs the
// database search tool and persists finished turns.
package conversation

import (
	"sync/atomic"
	"time"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/pkg/llm"
)

type Role string

const (
	RoleUser   Role = constant.ChatMessageRoleUser
	RoleModel  Role = constant.ChatMessageRoleModel
	RoleSystem Role = constant.ChatMessageRoleSystem
)

// Message is immutable once appended; streaming replaces the last element.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Status reports store connectivity as observed by the last Hydrate.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusError      Status = "error"
)

type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingFirstResponse State = "awaiting_first_response"
	StateAwaitingToolExecution State = "awaiting_tool_execution"
	StateAwaitingFinalResponse State = "awaiting_final_response"
)

// Session is the whole mutable conversation state. The controller passes it
// by pointer to the turn routine; fields other than inFlight are guarded by
// the controller mutex.
type Session struct {
	transcript       []Message
	groundingContext string
	fileName         string
	contextPending   bool
	modelSession     llm.ChatSession
	inFlight         atomic.Bool
	state            State
	status           Status
	lastError        string
	lastCreatedAt    time.Time
}

func newSession() *Session {
	return &Session{state: StateIdle, status: StatusConnecting}
}

// View is a copy of the session safe to hand to callers.
type View struct {
	Transcript     []Message `json:"transcript"`
	Status         Status    `json:"status"`
	State          State     `json:"state"`
	Busy           bool      `json:"busy"`
	FileName       string    `json:"file_name"`
	HasContext     bool      `json:"has_context"`
	ContextPending bool      `json:"context_pending"`
	LastError      string    `json:"last_error"`
}

func (s *Session) view() View {
	transcript := make([]Message, len(s.transcript))
	copy(transcript, s.transcript)

	return View{
		Transcript:     transcript,
		Status:         s.status,
		State:          s.state,
		Busy:           s.inFlight.Load(),
		FileName:       s.fileName,
		HasContext:     s.groundingContext != "",
		ContextPending: s.contextPending,
		LastError:      s.lastError,
	}
}

func (s *Session) last() (Message, bool) {
	if len(s.transcript) == 0 {
		return Message{}, false
	}
	return s.transcript[len(s.transcript)-1], true
}

func (s *Session) resetFile() {
	s.groundingContext = ""
	s.fileName = ""
	s.contextPending = false
}

// TurnResult summarizes a completed turn.
type TurnResult struct {
	Reply     string `json:"reply"`
	ToolQuery string `json:"tool_query,omitempty"`
	UsedTool  bool   `json:"used_tool"`

	// Message is the final model entry as it was left in the transcript.
	Message Message `json:"-"`
}
