package shared

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Filter
		page     int
		pageSize int
	}{
		{"zero values", Filter{}, 1, DefaultPageSize},
		{"negative page", Filter{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page", Filter{Page: 2, PageSize: 500}, 2, MaxPageSize},
		{"in range", Filter{Page: 4, PageSize: 25}, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.in.Normalize()
			assert.Equal(t, tt.page, n.Page)
			assert.Equal(t, tt.pageSize, n.PageSize)
			assert.Equal(t, "created_at", n.OrderBy)
			assert.Equal(t, "desc", n.OrderDir)
		})
	}
}

func TestFilter_NormalizeDoesNotMutate(t *testing.T) {
	f := Filter{Page: 0, PageSize: 0}
	_ = f.Normalize()
	_ = f.Normalize()
	assert.Equal(t, 0, f.Page)
	assert.Equal(t, 0, f.PageSize)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		expected int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 20, 5},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TotalPages(tt.total, tt.pageSize))
	}
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 23, 1, 10)
	assert.Equal(t, 3, p.Pagination.TotalPages)
	assert.Len(t, p.Data, 3)

	t.Run("never returns more rows than the page size", func(t *testing.T) {
		p := NewPaginated([]int{1, 2, 3, 4}, 4, 1, 2)
		assert.Len(t, p.Data, 2)
	})

	t.Run("nil data becomes empty slice", func(t *testing.T) {
		p := NewPaginated[int](nil, 0, 1, 20)
		assert.NotNil(t, p.Data)
		assert.Equal(t, 0, p.Pagination.TotalPages)
	})
}

func TestNewPageResult_HasMore(t *testing.T) {
	tests := []struct {
		total    int64
		page     int
		pageSize int
		hasMore  bool
	}{
		{0, 1, 10, false},
		{10, 1, 10, false},
		{11, 1, 10, true},
		{21, 2, 10, true},
		{20, 2, 10, false},
	}
	for _, tt := range tests {
		r := NewPageResult([]string{}, tt.total, tt.page, tt.pageSize)
		assert.Equal(t, tt.hasMore, r.HasMore, "total=%d page=%d size=%d", tt.total, tt.page, tt.pageSize)
	}
}

func TestPageResult_ToPaginated(t *testing.T) {
	r := MapPage(NewPageResult([]int{1, 2}, 7, 2, 2), func(in []int) []string {
		out := make([]string, len(in))
		for i, v := range in {
			out[i] = strings.Repeat("x", v)
		}
		return out
	})
	assert.Equal(t, []string{"x", "xx"}, r.Data)
	assert.True(t, r.HasMore)

	p := r.ToPaginated()
	assert.Equal(t, Pagination{Page: 2, PageSize: 2, Total: 7, TotalPages: 4, HasMore: true}, p.Pagination)
	assert.Equal(t, r.Data, p.Data)
}
