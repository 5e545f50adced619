package unitofwork

import (
	"context"

	"legal-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatHistoryRepository() contract.ChatHistoryRepository
	LegalDocumentRepository() contract.LegalDocumentRepository
}
