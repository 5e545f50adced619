package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/ingest"
	"legal-assistant-be/pkg/llm"
)

const logModule = "Conversation"

// TranscriptStore persists chat turns. Load returns messages in creation order.
type TranscriptStore interface {
	Load(ctx context.Context) ([]Message, error)
	Append(ctx context.Context, msg Message) error
	Clear(ctx context.Context) error
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

type Ingestor interface {
	Ingest(ctx context.Context, fileName string, r io.Reader) (*ingest.Document, error)
}

type Option func(*Controller)

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller is the single owner of the conversation Session. At most one
// turn, upload, file clear or new chat runs at a time.
type Controller struct {
	provider llm.Provider
	store    TranscriptStore
	searcher Searcher
	ingestor Ingestor
	observer Observer
	logger   logger.ILogger
	tracer   trace.Tracer
	now      func() time.Time

	mu      sync.Mutex
	session *Session
	writes  sync.WaitGroup
}

func NewController(provider llm.Provider, store TranscriptStore, searcher Searcher, ingestor Ingestor, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		store:    store,
		searcher: searcher,
		ingestor: ingestor,
		observer: nopObserver{},
		logger:   logger.NewNopLogger(),
		tracer:   otel.Tracer("legal-assistant-be/conversation"),
		now:      time.Now,
		session:  newSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns a snapshot of the current session.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.view()
}

// Flush blocks until every pending store write has finished.
func (c *Controller) Flush() {
	c.writes.Wait()
}

// Hydrate loads the stored transcript. A store failure leaves a local-only
// welcome message and status error; the error is returned for logging only.
func (c *Controller) Hydrate(ctx context.Context) error {
	s := c.session

	c.mu.Lock()
	c.setStatusLocked(s, StatusConnecting)
	c.mu.Unlock()

	msgs, err := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error(logModule, "Failed to load chat history", map[string]interface{}{"error": err})
		c.setStatusLocked(s, StatusError)
		c.resetTranscriptLocked(s, []Message{c.newMessageLocked(s, RoleModel, constant.WelcomeMessageOffline)})
		c.warnLocked(s, constant.NoticeHistoryLoadFailed)
		return fmt.Errorf("load transcript: %w", err)
	}

	c.setStatusLocked(s, StatusConnected)
	if len(msgs) > 0 {
		for _, m := range msgs {
			if m.CreatedAt.After(s.lastCreatedAt) {
				s.lastCreatedAt = m.CreatedAt
			}
		}
		c.resetTranscriptLocked(s, msgs)
		return nil
	}

	welcome := c.newMessageLocked(s, RoleModel, constant.WelcomeMessageFresh)
	c.resetTranscriptLocked(s, []Message{welcome})
	c.persist(welcome, "")
	return nil
}

// Send runs one full turn for text. It returns ErrEmptyMessage or
// ErrTurnInFlight without touching the session, or a *TurnError after rolling
// the transcript back. The turn ignores cancellation of ctx.
func (c *Controller) Send(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s := c.session
	if !c.acquire(s) {
		return nil, ErrTurnInFlight
	}
	defer c.release(s)

	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "conversation.turn")
	defer span.End()

	result, err := c.runTurn(ctx, s, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Bool("conversation.used_tool", result.UsedTool))
	return result, nil
}

func (c *Controller) runTurn(ctx context.Context, s *Session, text string) (*TurnResult, error) {
	c.mu.Lock()
	s.lastError = ""
	userMsg := c.newMessageLocked(s, RoleUser, text)
	userIdx := c.appendLocked(s, userMsg)
	c.mu.Unlock()
	c.persist(userMsg, constant.NoticeUserSaveFailed)

	chat, err := c.modelSession(ctx, s)
	if err != nil {
		return nil, c.failTurn(s, StageSession, err, userIdx)
	}

	prompt := c.takePrompt(s, text)

	c.mu.Lock()
	s.state = StateAwaitingFirstResponse
	c.appendLocked(s, c.newMessageLocked(s, RoleModel, ""))
	c.mu.Unlock()

	var (
		reply strings.Builder
		call  *llm.FunctionCall
	)
	for chunk, err := range chat.SendMessageStream(ctx, prompt) {
		if err != nil {
			return nil, c.failTurn(s, StageFirstStream, err, userIdx)
		}
		if len(chunk.FunctionCalls) > 0 {
			first := chunk.FunctionCalls[0]
			call = &first
			break
		}
		if chunk.Text == "" {
			continue
		}
		reply.WriteString(chunk.Text)
		c.mu.Lock()
		c.replaceLastLocked(s, reply.String())
		c.mu.Unlock()
	}

	if call == nil {
		msg := c.finishReply(s, reply.String())
		return &TurnResult{Reply: reply.String(), Message: msg}, nil
	}

	query, err := c.beginToolCall(s, *call)
	if err != nil {
		return nil, c.failTurn(s, StageTool, err, userIdx)
	}

	payload := c.runTool(ctx, query)

	c.mu.Lock()
	s.state = StateAwaitingFinalResponse
	c.appendLocked(s, c.newMessageLocked(s, RoleModel, ""))
	c.mu.Unlock()

	toolResult := llm.ToolResult{CallID: call.ID, Name: call.Name, Result: payload}
	var final strings.Builder
	for chunk, err := range chat.SendToolResultStream(ctx, toolResult) {
		if err != nil {
			return nil, c.failTurn(s, StageFinalStream, err, userIdx)
		}
		if chunk.Text == "" {
			continue
		}
		final.WriteString(chunk.Text)
		c.mu.Lock()
		c.replaceLastLocked(s, final.String())
		c.mu.Unlock()
	}

	msg := c.finishReply(s, final.String())
	return &TurnResult{Reply: final.String(), ToolQuery: query, UsedTool: true, Message: msg}, nil
}

func (c *Controller) modelSession(ctx context.Context, s *Session) (llm.ChatSession, error) {
	c.mu.Lock()
	chat := s.modelSession
	c.mu.Unlock()
	if chat != nil {
		return chat, nil
	}

	chat, err := c.provider.NewSession(ctx, llm.SessionConfig{
		SystemInstruction: constant.LegalAssistantSystemInstruction,
		Tools:             []llm.ToolDeclaration{ToolDeclaration()},
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	s.modelSession = chat
	c.mu.Unlock()
	return chat, nil
}

// takePrompt wraps the question with the uploaded file the first time it is
// asked after an upload.
func (c *Controller) takePrompt(s *Session, text string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.contextPending {
		return text
	}
	s.contextPending = false
	return groundedPrompt(s.fileName, s.groundingContext, text)
}

// beginToolCall drops the streaming placeholder and announces the search.
func (c *Controller) beginToolCall(s *Session, call llm.FunctionCall) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s.state = StateAwaitingToolExecution
	c.removeLastLocked(s)

	query, err := queryFromCall(call)
	if err != nil {
		return "", err
	}
	c.appendLocked(s, c.newMessageLocked(s, RoleSystem, fmt.Sprintf(constant.SystemSearchingFormat, query)))
	return query, nil
}

func (c *Controller) runTool(ctx context.Context, query string) string {
	ctx, span := c.tracer.Start(ctx, "conversation.tool", trace.WithAttributes(
		attribute.String("tool.name", constant.LegalSearchToolName),
	))
	defer span.End()

	results, err := c.searcher.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		c.logger.Error(logModule, "Legal database lookup failed", map[string]interface{}{
			"query": query,
			"error": err,
		})
		return NoResultsText
	}

	span.SetAttributes(attribute.Int("tool.results", len(results)))
	return FormatResults(results)
}

// finishReply returns the final model entry. An empty reply is not stored.
func (c *Controller) finishReply(s *Session, reply string) Message {
	c.mu.Lock()
	s.state = StateIdle
	msg := Message{Role: RoleModel, Content: reply}
	if last, ok := s.last(); ok && last.Role == RoleModel {
		msg = last
	}
	c.mu.Unlock()

	if reply != "" {
		c.persist(msg, constant.NoticeModelSaveFailed)
	}
	return msg
}

// failTurn removes a trailing empty placeholder and then the turn's user
// message when nothing of the reply survived.
func (c *Controller) failTurn(s *Session, stage Stage, err error, userIdx int) error {
	turnErr := &TurnError{Stage: stage, Err: err}
	c.logger.Error(logModule, "Turn failed", map[string]interface{}{
		"stage": string(stage),
		"error": err,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := s.last(); ok && last.Role == RoleModel && last.Content == "" {
		c.removeLastLocked(s)
	}
	if last, ok := s.last(); ok && last.Role == RoleUser && len(s.transcript)-1 == userIdx {
		c.removeLastLocked(s)
	}
	s.state = StateIdle
	c.errorLocked(s, turnErr.UserMessage())
	return turnErr
}

// IngestFile replaces the grounding context with the uploaded file. The model
// session is dropped for every accepted extension, even if parsing fails.
func (c *Controller) IngestFile(ctx context.Context, fileName string, r io.Reader) (*ingest.Document, error) {
	s := c.session
	if !c.acquire(s) {
		return nil, ErrTurnInFlight
	}
	defer c.release(s)

	doc, err := c.ingestor.Ingest(ctx, fileName, r)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		var ingestErr *ingest.Error
		notice := constant.IngestProcessingFailed
		rejectedByName := false
		if errors.As(err, &ingestErr) {
			notice = ingestErr.Message
			rejectedByName = ingestErr.Kind == ingest.KindLegacyFormat || ingestErr.Kind == ingest.KindUnsupported
		}
		if !rejectedByName {
			s.modelSession = nil
		}
		s.resetFile()
		c.logger.Warn(logModule, "File ingestion failed", map[string]interface{}{
			"file":  fileName,
			"error": err.Error(),
		})
		c.errorLocked(s, notice)
		return nil, err
	}

	s.modelSession = nil
	s.lastError = ""
	if doc.Truncated {
		c.warnLocked(s, doc.Warning())
	}
	s.groundingContext = doc.Text
	s.fileName = fileName
	s.contextPending = true
	c.appendLocked(s, c.newMessageLocked(s, RoleSystem, fmt.Sprintf(constant.SystemFileUploadedFormat, fileName)))

	c.logger.Info(logModule, "File ingested", map[string]interface{}{
		"file":      fileName,
		"chars":     doc.OriginalLength,
		"truncated": doc.Truncated,
	})
	return doc, nil
}

// ClearFile drops the grounding context. The model session is kept.
func (c *Controller) ClearFile() error {
	s := c.session
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrTurnInFlight
	}
	defer s.inFlight.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	s.resetFile()
	c.appendLocked(s, c.newMessageLocked(s, RoleSystem, constant.SystemFileCleared))
	return nil
}

// NewChat wipes the stored history and starts over with a fresh welcome
// message. A failed delete is reported as a warning; memory is reset anyway.
func (c *Controller) NewChat(ctx context.Context) error {
	s := c.session
	if !c.acquire(s) {
		return ErrTurnInFlight
	}
	defer c.release(s)

	clearErr := c.store.Clear(ctx)

	c.mu.Lock()
	s.lastError = ""
	if clearErr != nil {
		c.logger.Error(logModule, "Failed to clear chat history", map[string]interface{}{"error": clearErr})
		c.warnLocked(s, constant.NoticeClearFailed)
	}
	s.resetFile()
	s.modelSession = nil
	welcome := c.newMessageLocked(s, RoleModel, constant.WelcomeMessageNewChat)
	c.resetTranscriptLocked(s, []Message{welcome})
	c.mu.Unlock()

	c.persist(welcome, "")
	return nil
}

func (c *Controller) acquire(s *Session) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false
	}
	c.mu.Lock()
	c.emitLocked(Event{Type: EventBusyChanged, Busy: true})
	c.mu.Unlock()
	return true
}

func (c *Controller) release(s *Session) {
	c.mu.Lock()
	s.state = StateIdle
	s.inFlight.Store(false)
	c.emitLocked(Event{Type: EventBusyChanged, Busy: false})
	c.mu.Unlock()
}

// persist writes msg in the background. notice is surfaced as a warning when
// the write fails; an empty notice only logs.
func (c *Controller) persist(msg Message, notice string) {
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()

		if err := c.store.Append(context.Background(), msg); err != nil {
			c.logger.Error(logModule, "Failed to save message", map[string]interface{}{
				"role":  string(msg.Role),
				"error": err,
			})
			if notice == "" {
				return
			}
			c.mu.Lock()
			c.warnLocked(c.session, notice)
			c.mu.Unlock()
		}
	}()
}

// newMessageLocked stamps messages with strictly increasing times at
// microsecond precision, the resolution of the created_at column, so the
// stored order matches the transcript.
func (c *Controller) newMessageLocked(s *Session, role Role, content string) Message {
	at := c.now().UTC().Truncate(time.Microsecond)
	if !at.After(s.lastCreatedAt) {
		at = s.lastCreatedAt.Add(time.Microsecond)
	}
	s.lastCreatedAt = at
	return Message{Role: role, Content: content, CreatedAt: at}
}

func (c *Controller) appendLocked(s *Session, msg Message) int {
	s.transcript = append(s.transcript, msg)
	idx := len(s.transcript) - 1
	c.emitLocked(Event{Type: EventMessageAppended, Index: idx, Message: &msg})
	return idx
}

func (c *Controller) replaceLastLocked(s *Session, content string) {
	idx := len(s.transcript) - 1
	if idx < 0 {
		return
	}
	prev := s.transcript[idx]
	msg := Message{Role: prev.Role, Content: content, CreatedAt: prev.CreatedAt}
	s.transcript[idx] = msg
	c.emitLocked(Event{Type: EventMessageUpdated, Index: idx, Message: &msg})
}

func (c *Controller) removeLastLocked(s *Session) {
	idx := len(s.transcript) - 1
	if idx < 0 {
		return
	}
	s.transcript = s.transcript[:idx]
	c.emitLocked(Event{Type: EventMessageRemoved, Index: idx})
}

func (c *Controller) resetTranscriptLocked(s *Session, msgs []Message) {
	s.transcript = msgs
	snapshot := make([]Message, len(msgs))
	copy(snapshot, msgs)
	c.emitLocked(Event{Type: EventTranscriptReset, Transcript: snapshot})
}

func (c *Controller) setStatusLocked(s *Session, status Status) {
	s.status = status
	c.emitLocked(Event{Type: EventStatusChanged, Status: status})
}

func (c *Controller) warnLocked(s *Session, notice string) {
	s.lastError = notice
	c.emitLocked(Event{Type: EventWarning, Notice: notice})
}

func (c *Controller) errorLocked(s *Session, notice string) {
	s.lastError = notice
	c.emitLocked(Event{Type: EventError, Notice: notice})
}

func (c *Controller) emitLocked(e Event) {
	e.OccurredAt = c.now().UTC()
	if e.Type != EventBusyChanged {
		e.Busy = c.session.inFlight.Load()
	}
	c.observer.OnEvent(e)
}
