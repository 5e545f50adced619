package implementation

import (
	"context"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/mapper"
	"legal-assistant-be/internal/model"
	"legal-assistant-be/internal/repository/contract"
	"legal-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LegalDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewLegalDocumentRepository(db *gorm.DB) contract.LegalDocumentRepository {
	return &LegalDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *LegalDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LegalDocumentRepositoryImpl) Create(ctx context.Context, document *entity.LegalDocument) error {
	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	m := r.mapper.LegalDocumentToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.LegalDocumentToEntity(m)
	return nil
}

func (r *LegalDocumentRepositoryImpl) CreateBulk(ctx context.Context, documents []*entity.LegalDocument) error {
	if len(documents) == 0 {
		return nil
	}
	models := make([]*model.LegalDocument, len(documents))
	for i, d := range documents {
		if d.Id == uuid.Nil {
			d.Id = uuid.New()
		}
		models[i] = r.mapper.LegalDocumentToModel(d)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 200).Error
}

func (r *LegalDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LegalDocument, error) {
	var models []*model.LegalDocument
	query := r.applySpecifications(r.db.WithContext(ctx).Select("id", "titl", "text", "created_at"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.LegalDocument, len(models))
	for i, m := range models {
		entities[i] = r.mapper.LegalDocumentToEntity(m)
	}
	return entities, nil
}

func (r *LegalDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LegalDocument{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
