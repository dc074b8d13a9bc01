package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name           string
		number, size   int
		expectedNumber int
		expectedSize   int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"explicit", 4, 25, 4, 25},
		{"size_capped", 1, math.MaxInt, 1, domain.MaxPageSize},
	}
	for _, tt := range tests {
		page := domain.NewPage(tt.number, tt.size)
		require.Equal(t, tt.expectedNumber, page.Number, tt.name)
		require.Equal(t, tt.expectedSize, page.Size, tt.name)
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name       string
		page       domain.Page
		total      int
		start, end int
	}{
		{"first_page", domain.NewPage(1, 10), 25, 0, 10},
		{"last_partial_page", domain.NewPage(3, 10), 25, 20, 25},
		{"past_the_end", domain.NewPage(4, 10), 25, 25, 25},
		{"exact_fit", domain.NewPage(2, 5), 10, 5, 10},
		{"empty_list", domain.NewPage(1, 10), 0, 0, 0},
		{"huge_number", domain.NewPage(math.MaxInt, 10), 25, 25, 25},
		{"huge_size", domain.Page{Number: 2, Size: math.MaxInt}, 25, 25, 25},
		{"huge_number_and_size", domain.Page{Number: math.MaxInt, Size: math.MaxInt}, 25, 25, 25},
		{"huge_size_first_page", domain.Page{Number: 1, Size: math.MaxInt}, 25, 0, 25},
		{"capped_size", domain.NewPage(math.MaxInt/2, math.MaxInt), 25, 25, 25},
		{"zero_value", domain.Page{}, 25, 0, 0},
		{"negative_number", domain.Page{Number: -5, Size: 10}, 25, 0, 0},
	}
	for _, tt := range tests {
		start, end := tt.page.Bounds(tt.total)
		require.Equal(t, tt.start, start, tt.name)
		require.Equal(t, tt.end, end, tt.name)
		require.LessOrEqual(t, start, end, tt.name)
	}
}
