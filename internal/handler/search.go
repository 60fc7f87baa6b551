package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/service"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Normalize(defaultProductLimit)
	products, total, err := h.searchService.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{
		Success:     true,
		Query:       q.Q,
		Count:       len(products),
		Total:       total,
		TotalPages:  dto.TotalPages(total, q.Limit),
		CurrentPage: q.Page,
		Data:        dto.NewProductList(products),
	})
}

func (h *SearchHandler) Suggestions(c *gin.Context) {
	var q dto.SuggestionQuery
	if !bindQuery(c, &q) {
		return
	}
	suggestions, err := h.searchService.Suggestions(c.Request.Context(), q.Q)
	if err != nil {
		respondError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	ok(c, suggestions)
}

func (h *SearchHandler) Trending(c *gin.Context) {
	ok(c, h.searchService.Trending(c.Request.Context()))
}
