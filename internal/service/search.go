package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

const (
	trendingKey      = "search:trending"
	trendingLimit    = 8
	suggestionLimit  = 10
	minSuggestionLen = 2
)

// FallbackTrending is served while no searches have been recorded.
var FallbackTrending = []string{
	"laptop", "wireless headphones", "gaming mouse", "mechanical keyboard",
	"smartphone", "4k monitor", "webcam", "usb-c cable",
}

var searchSorts = map[string][]string{
	"":           {"relevance"},
	"relevance":  {"relevance"},
	"price-low":  {"price"},
	"price-high": {"-price"},
	"rating":     {"-rating"},
	"newest":     {"-createdAt"},
}

type SearchService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewSearchService(productRepo repository.ProductRepository, redisClient *redis.Client, logger *slog.Logger) *SearchService {
	return &SearchService{productRepo: productRepo, redisClient: redisClient, logger: logger}
}

// Search runs a full-text query over active products. Results default to
// relevance order.
func (s *SearchService) Search(ctx context.Context, q dto.SearchQuery) ([]model.Product, int, error) {
	term := strings.TrimSpace(q.Q)
	if term == "" {
		return nil, 0, ErrSearchQuery
	}
	sort, ok := searchSorts[q.Sort]
	if !ok {
		return nil, 0, invalidInput("Invalid sort option")
	}

	filter := repository.ProductFilter{
		Search:    term,
		MinPrice:  decimalPtr(q.MinPrice),
		MaxPrice:  decimalPtr(q.MaxPrice),
		MinRating: q.MinRating,
		Status:    model.ProductStatusActive,
		Sort:      sort,
		Limit:     q.Limit,
		Offset:    q.Offset(),
	}
	if q.Category != "" {
		id, err := uuid.Parse(q.Category)
		if err != nil {
			return nil, 0, invalidInput("Invalid category id")
		}
		filter.CategoryID = &id
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	s.recordSearch(ctx, term)
	return products, total, nil
}

// Suggestions matches product names by substring. Queries shorter than two
// characters yield nothing.
func (s *SearchService) Suggestions(ctx context.Context, q string) ([]model.Suggestion, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSuggestionLen {
		return []model.Suggestion{}, nil
	}
	suggestions, err := s.productRepo.Suggest(ctx, q, suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("suggest products: %w", err)
	}
	return suggestions, nil
}

// Trending returns the most searched terms.
func (s *SearchService) Trending(ctx context.Context) []string {
	if s.redisClient == nil {
		return FallbackTrending
	}
	terms, err := s.redisClient.ZRevRange(ctx, trendingKey, 0, trendingLimit-1).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "read trending searches", "error", err)
		return FallbackTrending
	}
	if len(terms) == 0 {
		return FallbackTrending
	}
	return terms
}

func (s *SearchService) recordSearch(ctx context.Context, term string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.ZIncrBy(ctx, trendingKey, 1, strings.ToLower(term)).Err(); err != nil {
		s.logger.WarnContext(ctx, "record search term", "error", err)
	}
}
