package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name                        string
		page, perPage               int
		wantPage, wantPer, wantOffs int
	}{
		{"defaults", 0, 0, 1, defaultPerPage, 0},
		{"third page", 3, 10, 3, 10, 20},
		{"clamped per page", 2, 1000, 2, maxPerPage, maxPerPage},
		{"negative page", -4, 5, 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, pp, limit, offset := pageWindow(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantPer, pp)
			assert.Equal(t, tt.wantPer, limit)
			assert.Equal(t, tt.wantOffs, offset)
		})
	}
}
