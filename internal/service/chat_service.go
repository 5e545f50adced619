package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/citation"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/events"
	"legal-assistant-be/pkg/ingest"
)

// EventPublisher sends lifecycle events to the external stream.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IChatService interface {
	Start(ctx context.Context) error
	Shutdown()
	History(ctx context.Context) *dto.HistoryResponse
	Status(ctx context.Context) *dto.ChatStatusResponse
	SendMessage(ctx context.Context, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	UploadFile(ctx context.Context, fileName string, r io.Reader) (*dto.FileUploadResponse, error)
	ClearFile(ctx context.Context) error
	NewChat(ctx context.Context) error
}

type chatService struct {
	controller *conversation.Controller
	publisher  EventPublisher
	logger     logger.ILogger
	pending    sync.WaitGroup
}

// NewChatService wraps the controller for the HTTP layer. publisher may be nil
// when no event stream is configured.
func NewChatService(controller *conversation.Controller, publisher EventPublisher, log logger.ILogger) IChatService {
	return &chatService{
		controller: controller,
		publisher:  publisher,
		logger:     log,
	}
}

// Start loads the stored transcript. A load failure is already reflected in
// the session (offline welcome, status error) so it is only logged here.
func (s *chatService) Start(ctx context.Context) error {
	if err := s.controller.Hydrate(ctx); err != nil {
		s.logger.Warn("ChatService", "Starting with an offline transcript", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// Shutdown waits for background store writes and event publishing.
func (s *chatService) Shutdown() {
	s.controller.Flush()
	s.pending.Wait()
}

func (s *chatService) History(ctx context.Context) *dto.HistoryResponse {
	view := s.controller.View()

	entries := make([]dto.ChatEntryResponse, 0, len(view.Transcript))
	for _, msg := range view.Transcript {
		entries = append(entries, toEntry(msg))
	}

	return &dto.HistoryResponse{
		Entries: entries,
		Status:  toStatus(view),
	}
}

func (s *chatService) Status(ctx context.Context) *dto.ChatStatusResponse {
	status := toStatus(s.controller.View())
	return &status
}

func (s *chatService) SendMessage(ctx context.Context, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	result, err := s.controller.Send(ctx, request.Message)
	if err != nil {
		var turnErr *conversation.TurnError
		if errors.As(err, &turnErr) {
			s.publish(events.New(events.ChatTurnFailed, map[string]interface{}{
				"stage": string(turnErr.Stage),
				"error": turnErr.Err.Error(),
			}))
		}
		return nil, err
	}

	s.publish(events.New(events.ChatTurnCompleted, map[string]interface{}{
		"used_tool":   result.UsedTool,
		"tool_query":  result.ToolQuery,
		"reply_chars": len([]rune(result.Reply)),
	}))

	return &dto.SendMessageResponse{
		Reply:     toEntry(result.Message),
		UsedTool:  result.UsedTool,
		ToolQuery: result.ToolQuery,
	}, nil
}

func (s *chatService) UploadFile(ctx context.Context, fileName string, r io.Reader) (*dto.FileUploadResponse, error) {
	doc, err := s.controller.IngestFile(ctx, fileName, r)
	if err != nil {
		if errors.Is(err, conversation.ErrTurnInFlight) {
			return nil, err
		}
		reason := string(ingest.KindParse)
		var ingestErr *ingest.Error
		if errors.As(err, &ingestErr) {
			reason = string(ingestErr.Kind)
		}
		s.publish(events.New(events.ChatFileRejected, map[string]interface{}{
			"file_name": fileName,
			"reason":    reason,
		}))
		return nil, err
	}

	s.publish(events.New(events.ChatFileIngested, map[string]interface{}{
		"file_name":       doc.FileName,
		"extension":       doc.Extension,
		"original_length": doc.OriginalLength,
		"truncated":       doc.Truncated,
	}))

	res := &dto.FileUploadResponse{
		FileName:       doc.FileName,
		Extension:      doc.Extension,
		Characters:     len([]rune(doc.Text)),
		OriginalLength: doc.OriginalLength,
		Truncated:      doc.Truncated,
	}
	if doc.Truncated {
		res.Warning = doc.Warning()
	}
	return res, nil
}

func (s *chatService) ClearFile(ctx context.Context) error {
	return s.controller.ClearFile()
}

func (s *chatService) NewChat(ctx context.Context) error {
	if err := s.controller.NewChat(ctx); err != nil {
		return err
	}
	s.publish(events.New(events.ChatHistoryCleared, nil))
	return nil
}

func (s *chatService) publish(event events.BaseEvent) {
	if s.publisher == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.publisher.Publish(context.Background(), event); err != nil {
			s.logger.Warn("ChatService", "Failed to publish chat event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}()
}

func toEntry(msg conversation.Message) dto.ChatEntryResponse {
	entry := dto.ChatEntryResponse{
		Role:      string(msg.Role),
		Content:   msg.Content,
		Body:      msg.Content,
		Sources:   []string{},
		CreatedAt: msg.CreatedAt,
	}
	if msg.Role == conversation.RoleModel {
		rendered := citation.Extract(msg.Content)
		entry.Body = rendered.Body
		entry.Sources = rendered.Sources
	}
	return entry
}

func toStatus(view conversation.View) dto.ChatStatusResponse {
	return dto.ChatStatusResponse{
		DbStatus:       string(view.Status),
		State:          string(view.State),
		Busy:           view.Busy,
		FileName:       view.FileName,
		HasContext:     view.HasContext,
		ContextPending: view.ContextPending,
		Error:          view.LastError,
	}
}
