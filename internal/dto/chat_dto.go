package dto

import "time"

type SendMessageRequest struct {
	// Blank input is a domain rejection (422), so only the length is checked here.
	Message string `json:"message" validate:"max=100000"`
}

type ChatEntryResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Body      string    `json:"body"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatStatusResponse struct {
	DbStatus       string `json:"db_status"`
	State          string `json:"state"`
	Busy           bool   `json:"busy"`
	FileName       string `json:"file_name,omitempty"`
	HasContext     bool   `json:"has_context"`
	ContextPending bool   `json:"context_pending"`
	Error          string `json:"error,omitempty"`
}

type HistoryResponse struct {
	Entries []ChatEntryResponse `json:"entries"`
	Status  ChatStatusResponse  `json:"status"`
}

type SendMessageResponse struct {
	Reply     ChatEntryResponse `json:"reply"`
	UsedTool  bool              `json:"used_tool"`
	ToolQuery string            `json:"tool_query,omitempty"`
}

type FileUploadResponse struct {
	FileName       string `json:"file_name"`
	Extension      string `json:"extension"`
	Characters     int    `json:"characters"`
	OriginalLength int    `json:"original_length"`
	Truncated      bool   `json:"truncated"`
	Warning        string `json:"warning,omitempty"`
}
