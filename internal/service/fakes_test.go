package service

import (
	"context"
	"iter"
	"sync"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/contract"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/events"
	"legal-assistant-be/pkg/llm"
)

// --- repositories ---

type fakeChatHistoryRepo struct {
	rows      []*entity.ChatHistory
	created   []*entity.ChatHistory
	findErr   error
	createErr error
	deleteErr error
	specs     []specification.Specification
}

func (r *fakeChatHistoryRepo) Create(_ context.Context, m *entity.ChatHistory) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, m)
	return nil
}

func (r *fakeChatHistoryRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.ChatHistory, error) {
	r.specs = specs
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.rows, nil
}

func (r *fakeChatHistoryRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeChatHistoryRepo) DeleteAll(context.Context) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := int64(len(r.rows))
	r.rows = nil
	return n, nil
}

type fakeLegalDocumentRepo struct {
	docs  []*entity.LegalDocument
	err   error
	calls int
	specs []specification.Specification
}

func (r *fakeLegalDocumentRepo) Create(context.Context, *entity.LegalDocument) error { return nil }

func (r *fakeLegalDocumentRepo) CreateBulk(context.Context, []*entity.LegalDocument) error {
	return nil
}

func (r *fakeLegalDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.LegalDocument, error) {
	r.calls++
	r.specs = specs
	if r.err != nil {
		return nil, r.err
	}
	return r.docs, nil
}

func (r *fakeLegalDocumentRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.docs)), nil
}

type fakeUnitOfWork struct {
	chats *fakeChatHistoryRepo
	docs  *fakeLegalDocumentRepo
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) ChatHistoryRepository() contract.ChatHistoryRepository { return u.chats }

func (u *fakeUnitOfWork) LegalDocumentRepository() contract.LegalDocumentRepository {
	return u.docs
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUnitOfWork{
		chats: &fakeChatHistoryRepo{},
		docs:  &fakeLegalDocumentRepo{},
	}}
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

// --- model ---

type scriptedChat struct {
	replies [][]*llm.Chunk
}

func (c *scriptedChat) SendMessageStream(context.Context, string) iter.Seq2[*llm.Chunk, error] {
	return c.next()
}

func (c *scriptedChat) SendToolResultStream(context.Context, llm.ToolResult) iter.Seq2[*llm.Chunk, error] {
	return c.next()
}

func (c *scriptedChat) next() iter.Seq2[*llm.Chunk, error] {
	var chunks []*llm.Chunk
	if len(c.replies) > 0 {
		chunks, c.replies = c.replies[0], c.replies[1:]
	}
	return func(yield func(*llm.Chunk, error) bool) {
		for _, ch := range chunks {
			if !yield(ch, nil) {
				return
			}
		}
	}
}

type scriptedProvider struct {
	chat *scriptedChat
	err  error
}

func (p *scriptedProvider) NewSession(context.Context, llm.SessionConfig) (llm.ChatSession, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.chat, nil
}

// --- collaborators ---

type memTranscript struct {
	mu   sync.Mutex
	rows []conversation.Message
}

func (s *memTranscript) Load(context.Context) ([]conversation.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]conversation.Message(nil), s.rows...), nil
}

func (s *memTranscript) Append(_ context.Context, msg conversation.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, msg)
	return nil
}

func (s *memTranscript) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
	return nil
}

type noSearch struct{}

func (noSearch) Search(context.Context, string) ([]conversation.SearchResult, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type logEntry struct {
	level   string
	message string
	details map[string]interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, message: message, details: details})
}

func (l *recordingLogger) Debug(_, m string, d map[string]interface{}) { l.add("debug", m, d) }
func (l *recordingLogger) Info(_, m string, d map[string]interface{})  { l.add("info", m, d) }
func (l *recordingLogger) Warn(_, m string, d map[string]interface{})  { l.add("warn", m, d) }
func (l *recordingLogger) Error(_, m string, d map[string]interface{}) { l.add("error", m, d) }
func (l *recordingLogger) Sync() error                                 { return nil }
