package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/shopsphere-api/internal/model"
)

type ReviewFilter struct {
	ProductID uuid.UUID
	Rating    int
	Sort      string
	Limit     int
	Offset    int
}

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*model.Review, error)
	ListApproved(ctx context.Context, filter ReviewFilter) ([]model.Review, int, error)
	Update(ctx context.Context, review *model.Review) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReviewStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	RatingStats(ctx context.Context, productID uuid.UUID) (model.RatingSummary, error)
	// ToggleHelpful flips the user's vote. It returns the recounted total and
	// whether the vote is now present.
	ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (int, bool, error)
}

type pgReviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &pgReviewRepo{pool: pool}
}

const reviewSelect = `SELECT r.id, r.product_id, r.user_id, COALESCE(u.name, '') AS user_name, r.rating, r.title, r.comment,
	r.images, r.verified, r.helpful, r.status, r.created_at, r.updated_at
	FROM reviews r LEFT JOIN users u ON u.id = r.user_id`

var reviewSorts = map[string]string{
	"newest":      "r.created_at DESC",
	"helpful":     "r.helpful DESC, r.created_at DESC",
	"rating-high": "r.rating DESC, r.created_at DESC",
	"rating-low":  "r.rating ASC, r.created_at DESC",
}

func (r *pgReviewRepo) Create(ctx context.Context, review *model.Review) error {
	review.ID = uuid.New()
	if review.Images == nil {
		review.Images = []model.ReviewImage{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reviews (id, product_id, user_id, rating, title, comment, images, verified, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()) RETURNING created_at, updated_at`,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Title, review.Comment,
		review.Images, review.Verified, review.Status,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create review: %w", ErrDuplicate)
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	return r.getOne(ctx, reviewSelect+` WHERE r.id = $1`, id)
}

func (r *pgReviewRepo) GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*model.Review, error) {
	return r.getOne(ctx, reviewSelect+` WHERE r.user_id = $1 AND r.product_id = $2`, userID, productID)
}

func (r *pgReviewRepo) getOne(ctx context.Context, query string, args ...any) (*model.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	review, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

func (r *pgReviewRepo) ListApproved(ctx context.Context, f ReviewFilter) ([]model.Review, int, error) {
	where := ` WHERE r.product_id = $1 AND r.status = 'approved' AND ($2 = 0 OR r.rating = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews r`+where, f.ProductID, f.Rating,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	order, ok := reviewSorts[f.Sort]
	if !ok {
		order = reviewSorts["newest"]
	}
	rows, err := r.pool.Query(ctx,
		reviewSelect+where+` ORDER BY `+order+`, r.id LIMIT $3 OFFSET $4`,
		f.ProductID, f.Rating, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Review])
	if err != nil {
		return nil, 0, fmt.Errorf("scan review: %w", err)
	}
	return reviews, total, nil
}

func (r *pgReviewRepo) Update(ctx context.Context, review *model.Review) error {
	if review.Images == nil {
		review.Images = []model.ReviewImage{}
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE reviews SET rating=$2, title=$3, comment=$4, images=$5, updated_at=NOW() WHERE id=$1 RETURNING updated_at`,
		review.ID, review.Rating, review.Title, review.Comment, review.Images,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReviewStatus) error {
	ct, err := r.pool.Exec(ctx, `UPDATE reviews SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RatingStats aggregates approved reviews only. Rounding is left to the
// caller.
func (r *pgReviewRepo) RatingStats(ctx context.Context, productID uuid.UUID) (model.RatingSummary, error) {
	var s model.RatingSummary
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE product_id = $1 AND status = 'approved'`,
		productID,
	).Scan(&s.Average, &s.Count)
	if err != nil {
		return s, fmt.Errorf("rating stats: %w", err)
	}
	return s, nil
}

func (r *pgReviewRepo) ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (int, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the review row so concurrent toggles recount in order.
	if _, err := tx.Exec(ctx, `SELECT 1 FROM reviews WHERE id = $1 FOR UPDATE`, reviewID); err != nil {
		return 0, false, fmt.Errorf("lock review: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM review_helpful_votes WHERE review_id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return 0, false, fmt.Errorf("remove helpful vote: %w", err)
	}
	marked := ct.RowsAffected() == 0
	if marked {
		if _, err := tx.Exec(ctx,
			`INSERT INTO review_helpful_votes (review_id, user_id) VALUES ($1, $2)`, reviewID, userID,
		); err != nil {
			return 0, false, fmt.Errorf("add helpful vote: %w", err)
		}
	}

	var helpful int
	err = tx.QueryRow(ctx,
		`UPDATE reviews SET helpful = (SELECT COUNT(*) FROM review_helpful_votes WHERE review_id = $1)
		 WHERE id = $1 RETURNING helpful`, reviewID,
	).Scan(&helpful)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, fmt.Errorf("recount helpful: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit helpful: %w", err)
	}
	return helpful, marked, nil
}
