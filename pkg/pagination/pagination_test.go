package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastPage(t *testing.T) {
	tests := []struct {
		total int
		size  int
		want  int
	}{
		{total: 25, size: 10, want: 3},
		{total: 30, size: 10, want: 3},
		{total: 1, size: 10, want: 1},
		{total: 0, size: 10, want: 1},
		{total: 10, size: 10, want: 1},
		{total: 11, size: 10, want: 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LastPage(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 10, Offset(2, 10))
	assert.Equal(t, 20, Offset(3, 10))
	// pages below 1 are clamped
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 0, Offset(-5, 10))
}

func TestNewPage(t *testing.T) {
	// 25 items, page size 10: page 1 holds 10, page 3 holds 5, last_page is 3
	firstWindow := make([]int, 10)
	page := New(firstWindow, 25, 1, 10)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, Meta{Total: 25, Page: 1, LastPage: 3}, page.Meta)

	lastWindow := make([]int, 5)
	page = New(lastWindow, 25, 3, 10)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, Meta{Total: 25, Page: 3, LastPage: 3}, page.Meta)
}

func TestNewPageNilData(t *testing.T) {
	page := New[string](nil, 0, 1, DefaultPageSize)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.Meta.LastPage)
}
