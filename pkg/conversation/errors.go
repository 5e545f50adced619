package conversation

import (
	"errors"
	"fmt"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/pkg/llm"
)

var (
	ErrEmptyMessage      = errors.New("conversation: empty message")
	ErrTurnInFlight      = errors.New("conversation: a turn is already in flight")
	ErrMalformedToolCall = errors.New("conversation: malformed tool call")
)

type Stage string

const (
	StageSession     Stage = "session"
	StageFirstStream Stage = "first_stream"
	StageTool        Stage = "tool"
	StageFinalStream Stage = "final_stream"
)

// TurnError aborts a turn. The transcript has already been rolled back when
// it is returned.
type TurnError struct {
	Stage Stage
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("conversation: turn failed at %s: %v", e.Stage, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

// UserMessage is the Arabic text shown to the user.
func (e *TurnError) UserMessage() string {
	cause := constant.NoticeUnexpectedError
	switch {
	case errors.Is(e.Err, llm.ErrMissingAPIKey):
		cause = constant.NoticeMissingAPIKey
	case errors.Is(e.Err, ErrMalformedToolCall):
		cause = constant.NoticeMalformedToolCall
	case e.Err != nil && e.Err.Error() != "":
		cause = e.Err.Error()
	}
	return fmt.Sprintf(constant.NoticeTurnFailedFormat, cause)
}
