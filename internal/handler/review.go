package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	var q dto.ListReviewsQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Normalize(defaultReviewLimit)
	reviews, total, err := h.reviewService.ListProductReviews(c.Request.Context(), productID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, q.Pagination, len(reviews), total, dto.NewReviewList(reviews))
}

func (h *ReviewHandler) Create(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), middleware.GetUserID(c), productID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Review deleted successfully", nil)
}

func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	count, marked, err := h.reviewService.MarkHelpful(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Removed from helpful"
	if marked {
		msg = "Marked as helpful"
	}
	message(c, msg, dto.HelpfulResponse{Helpful: count})
}

func (h *ReviewHandler) SetStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.ReviewStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.SetStatus(c.Request.Context(), id, model.ReviewStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewReviewResponse(review))
}
