package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
)

func newTestSearchService() (*SearchService, *mockProductRepo) {
	products := newMockProductRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSearchService(products, nil, logger), products
}

func TestSearchService_Search_RequiresQuery(t *testing.T) {
	svc, _ := newTestSearchService()
	_, _, err := svc.Search(context.Background(), dto.SearchQuery{Q: "   "})
	assert.ErrorIs(t, err, ErrSearchQuery)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearchService_Search_DefaultsToRelevance(t *testing.T) {
	svc, products := newTestSearchService()
	products.add("Wireless Mouse", "20", 5)
	inactive := products.add("Wireless Keyboard", "40", 5)
	inactive.Status = model.ProductStatusInactive

	list, total, err := svc.Search(context.Background(), dto.SearchQuery{
		Q: "wireless", Pagination: dto.Pagination{Page: 1, Limit: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Wireless Mouse", list[0].Name)

	f := products.lastFilter
	assert.Equal(t, []string{"relevance"}, f.Sort)
	assert.Equal(t, model.ProductStatusActive, f.Status)
	assert.Equal(t, "wireless", f.Search)
}

func TestSearchService_Search_SortPresets(t *testing.T) {
	tests := map[string][]string{
		"price-low":  {"price"},
		"price-high": {"-price"},
		"rating":     {"-rating"},
		"newest":     {"-createdAt"},
		"relevance":  {"relevance"},
	}
	for preset, want := range tests {
		t.Run(preset, func(t *testing.T) {
			svc, products := newTestSearchService()
			_, _, err := svc.Search(context.Background(), dto.SearchQuery{Q: "lamp", Sort: preset})
			require.NoError(t, err)
			assert.Equal(t, want, products.lastFilter.Sort)
		})
	}
}

func TestSearchService_Suggestions(t *testing.T) {
	svc, products := newTestSearchService()
	products.add("Laptop Stand", "30", 5)

	got, err := svc.Suggestions(context.Background(), "l")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Suggestions(context.Background(), "lap")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Laptop Stand", got[0].Name)
}

func TestSearchService_Trending_FallsBackWithoutRedis(t *testing.T) {
	svc, _ := newTestSearchService()
	assert.Equal(t, FallbackTrending, svc.Trending(context.Background()))
}
