package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/events"
	"legal-assistant-be/pkg/ingest"
	"legal-assistant-be/pkg/llm"
)

type chatFixture struct {
	svc       IChatService
	store     *memTranscript
	publisher *recordingPublisher
	provider  *scriptedProvider
}

func newChatFixture(t *testing.T, replies ...[]*llm.Chunk) *chatFixture {
	t.Helper()

	f := &chatFixture{
		store:     &memTranscript{},
		publisher: &recordingPublisher{},
		provider:  &scriptedProvider{chat: &scriptedChat{replies: replies}},
	}
	ctrl := conversation.NewController(f.provider, f.store, noSearch{}, ingest.New())
	f.svc = NewChatService(ctrl, f.publisher, logger.NewNopLogger())
	require.NoError(t, f.svc.Start(context.Background()))
	f.svc.Shutdown() // flush the welcome write
	return f
}

func TestChatService_HistoryRendersCitations(t *testing.T) {
	f := newChatFixture(t, []*llm.Chunk{
		{Text: "مدة الإشعار ثلاثون يوماً. "},
		{Text: "[source: قانون العمل]"},
	})

	res, err := f.svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "  ما مدة الإشعار؟ "})
	require.NoError(t, err)
	f.svc.Shutdown()

	assert.False(t, res.UsedTool)
	assert.Equal(t, "model", res.Reply.Role)
	assert.Equal(t, "مدة الإشعار ثلاثون يوماً.", res.Reply.Body)
	assert.Equal(t, []string{"قانون العمل"}, res.Reply.Sources)

	history := f.svc.History(context.Background())
	require.Len(t, history.Entries, 3)
	assert.Equal(t, constant.WelcomeMessageFresh, history.Entries[0].Content)
	assert.Equal(t, "user", history.Entries[1].Role)
	assert.Equal(t, "ما مدة الإشعار؟", history.Entries[1].Body)
	assert.Equal(t, []string{}, history.Entries[1].Sources)
	assert.Equal(t, "مدة الإشعار ثلاثون يوماً. [source: قانون العمل]", history.Entries[2].Content)
	assert.Equal(t, "connected", history.Status.DbStatus)
	assert.Equal(t, "idle", history.Status.State)
	assert.False(t, history.Status.Busy)

	assert.Equal(t, []string{events.ChatTurnCompleted}, f.publisher.types())
}

func TestChatService_SendMessageReplyIgnoresLaterEntries(t *testing.T) {
	provider := &scriptedProvider{chat: &scriptedChat{replies: [][]*llm.Chunk{{{Text: "الرد [source: قانون العمل]"}}}}}
	store := &memTranscript{}

	var (
		armed   atomic.Bool
		once    sync.Once
		cleared = make(chan error, 1)
		ctrl    *conversation.Controller
	)
	// As soon as the turn releases the session, another request clears the file.
	observer := conversation.ObserverFunc(func(e conversation.Event) {
		if !armed.Load() || e.Type != conversation.EventBusyChanged || e.Busy {
			return
		}
		once.Do(func() {
			go func() { cleared <- ctrl.ClearFile() }()
		})
	})
	ctrl = conversation.NewController(provider, store, noSearch{}, ingest.New(), conversation.WithObserver(observer))
	svc := NewChatService(ctrl, nil, logger.NewNopLogger())
	require.NoError(t, svc.Start(context.Background()))
	svc.Shutdown()
	armed.Store(true)

	res, err := svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "سؤال"})
	require.NoError(t, err)
	require.NoError(t, <-cleared)
	svc.Shutdown()

	assert.Equal(t, "model", res.Reply.Role)
	assert.Equal(t, "الرد", res.Reply.Body)
	assert.Equal(t, []string{"قانون العمل"}, res.Reply.Sources)

	view := ctrl.View()
	last := view.Transcript[len(view.Transcript)-1]
	assert.Equal(t, conversation.RoleSystem, last.Role)
	model := view.Transcript[len(view.Transcript)-2]
	assert.Equal(t, model.CreatedAt, res.Reply.CreatedAt)
}

func TestChatService_SendMessageErrors(t *testing.T) {
	t.Run("empty message is rejected without events", func(t *testing.T) {
		f := newChatFixture(t)

		_, err := f.svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "   "})
		f.svc.Shutdown()

		assert.ErrorIs(t, err, conversation.ErrEmptyMessage)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("turn failure publishes turn_failed", func(t *testing.T) {
		f := newChatFixture(t)
		f.provider.err = llm.ErrMissingAPIKey

		_, err := f.svc.SendMessage(context.Background(), &dto.SendMessageRequest{Message: "سؤال"})
		f.svc.Shutdown()

		var turnErr *conversation.TurnError
		require.True(t, errors.As(err, &turnErr))
		assert.Equal(t, conversation.StageSession, turnErr.Stage)
		assert.Equal(t, []string{events.ChatTurnFailed}, f.publisher.types())
		assert.Equal(t, "session", f.publisher.events[0].Payload()["stage"])

		status := f.svc.Status(context.Background())
		assert.Equal(t, turnErr.UserMessage(), status.Error)
	})
}

func TestChatService_UploadFile(t *testing.T) {
	t.Run("accepted file", func(t *testing.T) {
		f := newChatFixture(t)

		res, err := f.svc.UploadFile(context.Background(), "عقد.txt", strings.NewReader("نص العقد"))
		require.NoError(t, err)
		f.svc.Shutdown()

		assert.Equal(t, &dto.FileUploadResponse{
			FileName:       "عقد.txt",
			Extension:      "txt",
			Characters:     8,
			OriginalLength: 8,
		}, res)

		status := f.svc.Status(context.Background())
		assert.Equal(t, "عقد.txt", status.FileName)
		assert.True(t, status.HasContext)
		assert.True(t, status.ContextPending)
		assert.Equal(t, []string{events.ChatFileIngested}, f.publisher.types())
	})

	t.Run("legacy doc is rejected", func(t *testing.T) {
		f := newChatFixture(t)

		_, err := f.svc.UploadFile(context.Background(), "old.doc", strings.NewReader("x"))
		f.svc.Shutdown()

		var ingestErr *ingest.Error
		require.True(t, errors.As(err, &ingestErr))
		assert.Equal(t, ingest.KindLegacyFormat, ingestErr.Kind)
		assert.Equal(t, []string{events.ChatFileRejected}, f.publisher.types())
		assert.Equal(t, "legacy_format", f.publisher.events[0].Payload()["reason"])
	})
}

func TestChatService_ClearFileAndNewChat(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.UploadFile(context.Background(), "a.json", strings.NewReader(`{"بند": 1}`))
	require.NoError(t, err)
	require.NoError(t, f.svc.ClearFile(context.Background()))

	status := f.svc.Status(context.Background())
	assert.Empty(t, status.FileName)
	assert.False(t, status.HasContext)

	require.NoError(t, f.svc.NewChat(context.Background()))
	f.svc.Shutdown()

	history := f.svc.History(context.Background())
	require.Len(t, history.Entries, 1)
	assert.Equal(t, constant.WelcomeMessageNewChat, history.Entries[0].Content)
	assert.ElementsMatch(t, []string{events.ChatFileIngested, events.ChatHistoryCleared}, f.publisher.types())

	stored, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, constant.WelcomeMessageNewChat, stored[0].Content)
}

func TestChatService_NilPublisher(t *testing.T) {
	ctrl := conversation.NewController(&scriptedProvider{chat: &scriptedChat{}}, &memTranscript{}, noSearch{}, ingest.New())
	svc := NewChatService(ctrl, nil, logger.NewNopLogger())
	require.NoError(t, svc.Start(context.Background()))

	assert.NotPanics(t, func() {
		require.NoError(t, svc.NewChat(context.Background()))
		svc.Shutdown()
	})
}
