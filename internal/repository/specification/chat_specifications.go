package specification

import "gorm.io/gorm"

// ChronologicalOrder is the transcript read order.
type ChronologicalOrder struct{}

func (s ChronologicalOrder) Apply(db *gorm.DB) *gorm.DB {
	return OrderBy{Field: "created_at"}.Apply(db)
}

// ByRoles keeps only rows whose role is one of Roles.
type ByRoles struct {
	Roles []string
}

func (s ByRoles) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role IN ?", s.Roles)
}
