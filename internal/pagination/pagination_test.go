package pagination_test

import (
	"testing"

	"messageapp/internal/pagination"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		pageIndex int
		want      pagination.Window
	}{
		{"no records", 0, 0, pagination.Window{Pages: 0}},
		{"single partial page", 5, 0, pagination.Window{Offset: 0, Limit: 20, Pages: 1}},
		{"exact multiple", 40, 1, pagination.Window{Offset: 20, Limit: 20, Pages: 2}},
		{"trailing partial page", 41, 2, pagination.Window{Offset: 40, Limit: 20, Pages: 3}},
		{"index equal to pages", 41, 3, pagination.Window{Pages: 3}},
		{"index far beyond", 41, 99, pagination.Window{Pages: 3}},
		{"negative index", 41, -1, pagination.Window{Pages: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pagination.Paginate(tt.total, tt.pageIndex, pagination.DefaultPageSize)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Limit == 0, got.Empty())
		})
	}
}

func TestPaginateCoversEveryRecordOnce(t *testing.T) {
	for _, total := range []int64{0, 1, 19, 20, 21, 59, 60, 61} {
		seen := make(map[int]int)
		w0 := pagination.Paginate(total, 0, 20)
		for page := 0; page < w0.Pages; page++ {
			w := pagination.Paginate(total, page, 20)
			for i := w.Offset; i < w.Offset+w.Limit && int64(i) < total; i++ {
				seen[i]++
			}
		}
		assert.Len(t, seen, int(total), "total=%d", total)
		for idx, n := range seen {
			assert.Equal(t, 1, n, "record %d seen %d times", idx, n)
		}
	}
}

func TestPaginateNonPositiveSizeFallsBack(t *testing.T) {
	w := pagination.Paginate(45, 1, 0)
	assert.Equal(t, pagination.Window{Offset: 20, Limit: 20, Pages: 3}, w)
}
