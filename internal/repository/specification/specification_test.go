package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderByClause(t *testing.T) {
	tests := []struct {
		spec   OrderBy
		want   string
		wantOK bool
	}{
		{OrderBy{Field: "updated_at", Desc: true}, "updated_at DESC", true},
		{OrderBy{Field: "title"}, "title ASC", true},
		{OrderBy{Field: "title; DROP TABLE notes"}, "", false},
		{OrderBy{Field: "content"}, "", false},
	}
	for _, tt := range tests {
		got, ok := tt.spec.clause()
		assert.Equal(t, tt.wantOK, ok, tt.spec.Field)
		assert.Equal(t, tt.want, got, tt.spec.Field)
	}
}

func TestPaginationBounds(t *testing.T) {
	tests := []struct {
		spec                  Pagination
		wantLimit, wantOffset int
	}{
		{Pagination{Limit: 20, Offset: 40}, 20, 40},
		{Pagination{}, maxPageSize, 0},
		{Pagination{Limit: 5000, Offset: -3}, maxPageSize, 0},
	}
	for _, tt := range tests {
		limit, offset := tt.spec.bounds()
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOffset, offset)
	}
}
