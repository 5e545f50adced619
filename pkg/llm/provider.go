package llm

import (
	"context"
	"errors"
	"iter"
)

// ErrMissingAPIKey is returned by NewSession when no provider credential is configured.
var ErrMissingAPIKey = errors.New("llm: missing API key")

// ToolDeclaration describes a callable function with string parameters.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

type ToolParameter struct {
	Name        string
	Description string
	Required    bool
}

type SessionConfig struct {
	SystemInstruction string
	Tools             []ToolDeclaration
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is sent back to the model as {"result": Result}.
type ToolResult struct {
	CallID string
	Name   string
	Result string
}

// Chunk is one streamed piece of a model response.
type Chunk struct {
	Text          string
	FunctionCalls []FunctionCall
}

// ChatSession is a stateful conversation; the provider keeps the history.
type ChatSession interface {
	SendMessageStream(ctx context.Context, text string) iter.Seq2[*Chunk, error]
	SendToolResultStream(ctx context.Context, result ToolResult) iter.Seq2[*Chunk, error]
}

// Provider defines the contract for any LLM backend
type Provider interface {
	NewSession(ctx context.Context, cfg SessionConfig) (ChatSession, error)
}
