package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxPageSize = 100

// ByID filters by primary key.
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// sortable lists the columns callers may order by. Anything else would be
// interpolated into SQL, so it is ignored.
var sortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

// OrderBy orders by one of the sortable columns; unknown fields are a no-op.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	clause, ok := s.clause()
	if !ok {
		return db
	}
	return db.Order(clause)
}

func (s OrderBy) clause() (string, bool) {
	if !sortable[s.Field] {
		return "", false
	}
	if s.Desc {
		return s.Field + " DESC", true
	}
	return s.Field + " ASC", true
}

// Pagination caps Limit at maxPageSize. A zero Limit means the first page
// of maxPageSize rows.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	limit, offset := s.bounds()
	return db.Limit(limit).Offset(offset)
}

func (s Pagination) bounds() (int, int) {
	limit := s.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset := s.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
