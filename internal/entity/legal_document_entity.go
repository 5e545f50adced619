package entity

import (
	"time"

	"github.com/google/uuid"
)

type LegalDocument struct {
	Id        uuid.UUID
	Title     string
	Text      string
	CreatedAt time.Time
}
