package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/visa-tracker/internal/domain"
)

func TestTraveler_UserKey(t *testing.T) {
	assert.Empty(t, domain.Traveler{}.UserKey())

	id := uuid.New()
	assert.Equal(t, id.String(), domain.Traveler{ID: id}.UserKey())
}

func TestNewPaginationParams(t *testing.T) {
	ptr := func(n int) *int { return &n }

	tests := []struct {
		name        string
		page, limit *int
		want        domain.PaginationParams
		wantOffset  int
	}{
		{"defaults", nil, nil, domain.PaginationParams{Page: 1, Limit: domain.DefaultPageLimit}, 0},
		{"explicit", ptr(3), ptr(10), domain.PaginationParams{Page: 3, Limit: 10}, 20},
		{"limit clamped", ptr(2), ptr(500), domain.PaginationParams{Page: 2, Limit: domain.MaxPageLimit}, 100},
		{"non-positive ignored", ptr(0), ptr(-5), domain.PaginationParams{Page: 1, Limit: domain.DefaultPageLimit}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NewPaginationParams(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
		})
	}
}
