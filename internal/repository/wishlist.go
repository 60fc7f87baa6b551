package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/shopsphere-api/internal/model"
)

type WishlistRepository interface {
	// Add reports false when the product was already on the list.
	Add(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]model.Product, error)
}

type pgWishlistRepo struct{ pool *pgxpool.Pool }

func NewWishlistRepository(pool *pgxpool.Pool) WishlistRepository {
	return &pgWishlistRepo{pool: pool}
}

func (r *pgWishlistRepo) Add(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`INSERT INTO user_wishlist (user_id, product_id, added_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("add wishlist item: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *pgWishlistRepo) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

func (r *pgWishlistRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_wishlist WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}

func (r *pgWishlistRepo) List(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+strings.Join(productColumns, ", ")+" "+productFrom+`
		 JOIN user_wishlist w ON w.product_id = p.id
		 WHERE w.user_id = $1 ORDER BY w.added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Product])
	if err != nil {
		return nil, fmt.Errorf("scan wishlist product: %w", err)
	}
	return products, nil
}
