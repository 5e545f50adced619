package service

import (
	"context"
	"fmt"

	"legal-assistant-be/internal/constant"
	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/pkg/conversation"
)

// LegalSearchService answers the model's database tool with a case-insensitive
// substring match over the corpus title and body.
type LegalSearchService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.SearchCache
	logger     logger.ILogger
}

func NewLegalSearchService(uowFactory unitofwork.RepositoryFactory, cache *memory.SearchCache, log logger.ILogger) *LegalSearchService {
	return &LegalSearchService{
		uowFactory: uowFactory,
		cache:      cache,
		logger:     log,
	}
}

func (s *LegalSearchService) Search(ctx context.Context, query string) ([]conversation.SearchResult, error) {
	if s.cache != nil {
		if docs, ok := s.cache.Get(query); ok {
			s.logger.Debug("LegalSearch", "Cache hit", map[string]interface{}{"query": query})
			return toSearchResults(docs), nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.LegalDocumentRepository().FindAll(ctx,
		specification.LegalDocumentSearchQuery{Query: query},
		specification.StorageOrder{},
		specification.Pagination{Limit: constant.LegalSearchResultLimit},
	)
	if err != nil {
		return nil, fmt.Errorf("search legal documents: %w", err)
	}

	s.logger.Info("LegalSearch", "Legal database queried", map[string]interface{}{
		"query":   query,
		"results": len(docs),
	})

	if len(docs) > 0 && s.cache != nil {
		s.cache.Save(query, docs)
	}
	return toSearchResults(docs), nil
}

func toSearchResults(docs []*entity.LegalDocument) []conversation.SearchResult {
	results := make([]conversation.SearchResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, conversation.SearchResult{Title: d.Title, Text: d.Text})
	}
	return results
}
