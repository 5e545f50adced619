package model

import (
	"time"

	"github.com/google/uuid"
)

// LegalDocument maps the legal corpus table. Column names follow the existing
// corpus dump ("titl" is not a typo on our side).
type LegalDocument struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Titl      string    `gorm:"column:titl;type:text;not null"`
	Text      string    `gorm:"column:text;type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LegalDocument) TableName() string {
	return "qanon"
}
