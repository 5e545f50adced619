package mapper

import (
	"encoding/json"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// History Mappers

func (m *ChatMapper) ChatHistoryToEntity(h *model.ChatHistory) *entity.ChatHistory {
	if h == nil {
		return nil
	}

	var citations []string
	if len(h.Citations) > 0 {
		// A malformed column only loses the citation list, never the message.
		_ = json.Unmarshal(h.Citations, &citations)
	}

	return &entity.ChatHistory{
		Id:        h.Id,
		Role:      h.Role,
		Content:   h.Content,
		Citations: citations,
		CreatedAt: h.CreatedAt,
	}
}

func (m *ChatMapper) ChatHistoryToModel(h *entity.ChatHistory) *model.ChatHistory {
	if h == nil {
		return nil
	}

	var citations datatypes.JSON
	if len(h.Citations) > 0 {
		if raw, err := json.Marshal(h.Citations); err == nil {
			citations = datatypes.JSON(raw)
		}
	}

	return &model.ChatHistory{
		Id:        h.Id,
		Role:      h.Role,
		Content:   h.Content,
		Citations: citations,
		CreatedAt: h.CreatedAt,
	}
}

// Corpus Mappers

func (m *ChatMapper) LegalDocumentToEntity(d *model.LegalDocument) *entity.LegalDocument {
	if d == nil {
		return nil
	}
	return &entity.LegalDocument{
		Id:        d.Id,
		Title:     d.Titl,
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}

func (m *ChatMapper) LegalDocumentToModel(d *entity.LegalDocument) *model.LegalDocument {
	if d == nil {
		return nil
	}
	return &model.LegalDocument{
		Id:        d.Id,
		Titl:      d.Title,
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}
