package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

// ProductCache drops cached catalog entries whose ratings changed.
type ProductCache interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	cache       ProductCache
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	cache ProductCache,
) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo, orderRepo: orderRepo, cache: cache}
}

// ListProductReviews returns approved reviews only.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, q dto.ListReviewsQuery) ([]model.Review, int, error) {
	reviews, total, err := s.reviewRepo.ListApproved(ctx, repository.ReviewFilter{
		ProductID: productID,
		Rating:    q.Rating,
		Sort:      q.Sort,
		Limit:     q.Limit,
		Offset:    q.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *ReviewService) Create(ctx context.Context, userID, productID uuid.UUID, req dto.CreateReviewRequest) (*model.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("check review: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateReview
	}

	verified, err := s.orderRepo.HasDeliveredPurchase(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Comment:   strings.TrimSpace(req.Comment),
		Images:    req.Images,
		Verified:  verified,
		Status:    model.ReviewStatusApproved,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.recomputeRatings(ctx, productID); err != nil {
		return nil, err
	}
	return s.reload(ctx, review)
}

// Update is restricted to the author.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, req dto.UpdateReviewRequest) (*model.Review, error) {
	review, err := s.get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrReviewAccessDenied
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Title != nil {
		review.Title = strings.TrimSpace(*req.Title)
	}
	if req.Comment != nil {
		review.Comment = strings.TrimSpace(*req.Comment)
	}
	if req.Images != nil {
		review.Images = *req.Images
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	if err := s.recomputeRatings(ctx, review.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete is allowed for the author and for admins.
func (s *ReviewService) Delete(ctx context.Context, actor model.Actor, reviewID uuid.UUID) error {
	review, err := s.get(ctx, reviewID)
	if err != nil {
		return err
	}
	if !actor.Owns(review.UserID) {
		return ErrReviewAccessDenied
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}
	return s.recomputeRatings(ctx, review.ProductID)
}

// SetStatus moderates a review. Only approved reviews count towards ratings.
func (s *ReviewService) SetStatus(ctx context.Context, reviewID uuid.UUID, status model.ReviewStatus) (*model.Review, error) {
	if !status.Valid() {
		return nil, invalidInput("Invalid review status")
	}
	review, err := s.get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.UpdateStatus(ctx, reviewID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review status: %w", err)
	}
	review.Status = status
	if err := s.recomputeRatings(ctx, review.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

// MarkHelpful toggles the caller's helpful vote. It returns the new count
// and whether the vote is now set.
func (s *ReviewService) MarkHelpful(ctx context.Context, userID, reviewID uuid.UUID) (int, bool, error) {
	if _, err := s.get(ctx, reviewID); err != nil {
		return 0, false, err
	}
	helpful, marked, err := s.reviewRepo.ToggleHelpful(ctx, reviewID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, ErrReviewNotFound
		}
		return 0, false, fmt.Errorf("toggle helpful: %w", err)
	}
	return helpful, marked, nil
}

// recomputeRatings writes the approved-review average, rounded to one
// decimal, and count back to the product.
func (s *ReviewService) recomputeRatings(ctx context.Context, productID uuid.UUID) error {
	stats, err := s.reviewRepo.RatingStats(ctx, productID)
	if err != nil {
		return fmt.Errorf("rating stats: %w", err)
	}
	stats.Average = roundRating(stats.Average)
	if err := s.productRepo.UpdateRatings(ctx, productID, stats); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("update ratings: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	return nil
}

func roundRating(avg float64) float64 {
	return decimal.NewFromFloat(avg).Round(1).InexactFloat64()
}

func (s *ReviewService) get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *ReviewService) reload(ctx context.Context, review *model.Review) (*model.Review, error) {
	fresh, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if fresh == nil {
		return review, nil
	}
	return fresh, nil
}
