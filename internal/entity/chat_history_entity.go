package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatHistory struct {
	Id        uuid.UUID
	Role      string
	Content   string
	Citations []string
	CreatedAt time.Time
}
