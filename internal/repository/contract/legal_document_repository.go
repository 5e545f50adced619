package contract

import (
	"context"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/specification"
)

type LegalDocumentRepository interface {
	Create(ctx context.Context, document *entity.LegalDocument) error
	CreateBulk(ctx context.Context, documents []*entity.LegalDocument) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LegalDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
