// Package gemini adapts google.golang.org/genai chats to the llm boundary.
package gemini

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"legal-assistant-be/pkg/llm"
)

const DefaultModel = "gemini-2.5-flash"

type Provider struct {
	apiKey  string
	model   string
	baseURL string
}

// Ensure Provider implements llm.Provider
var _ llm.Provider = &Provider{}

type Option func(*Provider)

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

func NewProvider(apiKey, model string, opts ...Option) *Provider {
	if model == "" {
		model = DefaultModel
	}
	p := &Provider{apiKey: apiKey, model: model}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewSession opens a fresh chat. The genai.Chat keeps the turn history, so the
// returned session is the only handle to the conversation.
func (p *Provider) NewSession(ctx context.Context, cfg llm.SessionConfig) (llm.ChatSession, error) {
	if p.apiKey == "" {
		return nil, llm.ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	chat, err := client.Chats.Create(ctx, p.model, generateConfig(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI chat: %w", err)
	}

	return &session{chat: chat}, nil
}

func generateConfig(cfg llm.SessionConfig) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{}
	if cfg.SystemInstruction != "" {
		out.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstruction}},
		}
	}
	if len(cfg.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(cfg.Tools))
		for _, t := range cfg.Tools {
			decls = append(decls, functionDeclaration(t))
		}
		out.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return out
}

func functionDeclaration(t llm.ToolDeclaration) *genai.FunctionDeclaration {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(t.Parameters)),
	}
	for _, p := range t.Parameters {
		schema.Properties[p.Name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: p.Description,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}

	return &genai.FunctionDeclaration{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

type session struct {
	chat *genai.Chat
}

func (s *session) SendMessageStream(ctx context.Context, text string) iter.Seq2[*llm.Chunk, error] {
	return adapt(s.chat.SendMessageStream(ctx, genai.Part{Text: text}))
}

func (s *session) SendToolResultStream(ctx context.Context, result llm.ToolResult) iter.Seq2[*llm.Chunk, error] {
	part := genai.Part{
		FunctionResponse: &genai.FunctionResponse{
			ID:       result.CallID,
			Name:     result.Name,
			Response: map[string]any{"result": result.Result},
		},
	}
	return adapt(s.chat.SendMessageStream(ctx, part))
}

// adapt converts a genai stream. The chat only records the exchange in its
// history once the stream is read to the end, so after the consumer stops the
// rest of the stream is drained without yielding.
func adapt(stream iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[*llm.Chunk, error] {
	return func(yield func(*llm.Chunk, error) bool) {
		consuming := true
		for resp, err := range stream {
			if err != nil {
				if consuming {
					yield(nil, fmt.Errorf("gemini stream: %w", err))
				}
				return
			}
			if consuming && !yield(toChunk(resp), nil) {
				consuming = false
			}
		}
	}
}

func toChunk(resp *genai.GenerateContentResponse) *llm.Chunk {
	chunk := &llm.Chunk{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return chunk
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			chunk.FunctionCalls = append(chunk.FunctionCalls, llm.FunctionCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			chunk.Text += part.Text
		}
	}
	return chunk
}
