package service

import (
	"context"
	"fmt"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/citation"
	"legal-assistant-be/pkg/conversation"

	"github.com/google/uuid"
)

// TranscriptStore keeps the chat transcript in the chat_history table.
// System annotations live in memory only and are never written.
type TranscriptStore struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewTranscriptStore(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *TranscriptStore {
	return &TranscriptStore{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *TranscriptStore) Load(ctx context.Context) ([]conversation.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.ChatHistoryRepository().FindAll(ctx,
		specification.ByRoles{Roles: []string{string(conversation.RoleUser), string(conversation.RoleModel)}},
		specification.ChronologicalOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("find chat history: %w", err)
	}

	msgs := make([]conversation.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, conversation.Message{
			Role:      conversation.Role(row.Role),
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	return msgs, nil
}

func (s *TranscriptStore) Append(ctx context.Context, msg conversation.Message) error {
	if msg.Role == conversation.RoleSystem {
		return nil
	}

	row := &entity.ChatHistory{
		Id:        uuid.New(),
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if msg.Role == conversation.RoleModel {
		row.Citations = citation.Sources(msg.Content)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatHistoryRepository().Create(ctx, row); err != nil {
		return fmt.Errorf("create chat history: %w", err)
	}
	return nil
}

func (s *TranscriptStore) Clear(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	deleted, err := uow.ChatHistoryRepository().DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}

	s.logger.Info("TranscriptStore", "Chat history cleared", map[string]interface{}{"deleted": deleted})
	return nil
}
