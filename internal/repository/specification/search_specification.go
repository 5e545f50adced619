package specification

import "gorm.io/gorm"

// LegalDocumentSearchQuery matches the query as a substring of the title OR the
// body of a corpus document. ILIKE keeps it case-insensitive on Postgres.
// The query is used verbatim, so % and _ inside it act as wildcards.
type LegalDocumentSearchQuery struct {
	Query string
}

func (s LegalDocumentSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("text ILIKE ? OR titl ILIKE ?", pattern, pattern)
}

// StorageOrder keeps rows in physical order; the corpus has no ranking.
type StorageOrder struct{}

func (s StorageOrder) Apply(db *gorm.DB) *gorm.DB {
	return db
}
