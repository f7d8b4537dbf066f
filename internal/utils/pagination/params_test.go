package pagination_test

import (
	"testing"

	"github.com/bankchen1/fo3-ledger-core/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", 0, 0, 1, 20},
		{"negative page clamped", -3, 10, 1, 10},
		{"oversized page size falls back to default", 2, 500, 2, 20},
		{"max page size allowed", 1, 100, 1, 100},
		{"valid values untouched", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := pagination.Normalize(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestSliceBounds(t *testing.T) {
	start, end := pagination.SliceBounds(45, 1, 20)
	assert.Equal(t, 0, start)
	assert.Equal(t, 20, end)

	start, end = pagination.SliceBounds(45, 3, 20)
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = pagination.SliceBounds(45, 4, 20)
	assert.Equal(t, 45, start)
	assert.Equal(t, 45, end)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Offset(1, 20))
	assert.Equal(t, 40, pagination.Offset(3, 20))
}
