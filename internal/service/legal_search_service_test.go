package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/pkg/conversation"
)

func TestLegalSearchService_Search(t *testing.T) {
	f := newFakeFactory()
	f.uow.docs.docs = []*entity.LegalDocument{
		{Title: "قانون العمل", Text: "مدة الإشعار ثلاثون يوماً"},
		{Title: "قانون الإيجار", Text: "يلتزم المستأجر"},
	}
	svc := NewLegalSearchService(f, memory.NewSearchCache(time.Minute), logger.NewNopLogger())

	results, err := svc.Search(context.Background(), "الإشعار")
	require.NoError(t, err)

	assert.Equal(t, []conversation.SearchResult{
		{Title: "قانون العمل", Text: "مدة الإشعار ثلاثون يوماً"},
		{Title: "قانون الإيجار", Text: "يلتزم المستأجر"},
	}, results)
	assert.Equal(t, []specification.Specification{
		specification.LegalDocumentSearchQuery{Query: "الإشعار"},
		specification.StorageOrder{},
		specification.Pagination{Limit: 5},
	}, f.uow.docs.specs)
}

func TestLegalSearchService_CachesOnlySuccessfulHits(t *testing.T) {
	tests := []struct {
		name      string
		docs      []*entity.LegalDocument
		err       error
		wantCalls int
	}{
		{
			name:      "hit is served from cache",
			docs:      []*entity.LegalDocument{{Title: "أ", Text: "ب"}},
			wantCalls: 1,
		},
		{
			name:      "empty result is not cached",
			wantCalls: 2,
		},
		{
			name:      "failure is not cached",
			err:       errors.New("timeout"),
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFactory()
			f.uow.docs.docs = tt.docs
			f.uow.docs.err = tt.err
			svc := NewLegalSearchService(f, memory.NewSearchCache(time.Minute), logger.NewNopLogger())

			_, _ = svc.Search(context.Background(), "Labour")
			_, _ = svc.Search(context.Background(), "labour")

			assert.Equal(t, tt.wantCalls, f.uow.docs.calls)
		})
	}
}

func TestLegalSearchService_ErrorIsWrapped(t *testing.T) {
	f := newFakeFactory()
	f.uow.docs.err = errors.New("relation \"qanon\" does not exist")
	svc := NewLegalSearchService(f, nil, logger.NewNopLogger())

	results, err := svc.Search(context.Background(), "x")
	assert.Nil(t, results)
	assert.ErrorContains(t, err, "search legal documents")
	assert.ErrorIs(t, err, f.uow.docs.err)
}
