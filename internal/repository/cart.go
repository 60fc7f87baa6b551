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

type CartRepository interface {
	// GetByUser returns nil, nil when the user has no cart yet.
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	// Save upserts the cart row with its derived totals and replaces its
	// lines, all in one transaction.
	Save(ctx context.Context, cart *model.Cart) error
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

func (r *pgCartRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{}
	var couponCode *string
	var couponDiscount int
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, coupon_code, coupon_discount, total_items, subtotal, tax, shipping, total, created_at, updated_at
		 FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &couponCode, &couponDiscount, &cart.TotalItems,
		&cart.Subtotal, &cart.Tax, &cart.Shipping, &cart.Total, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if couponCode != nil {
		cart.Coupon = &model.AppliedCoupon{Code: *couponCode, Discount: couponDiscount}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price, ci.selected_color, ci.selected_size, ci.added_at,
		        p.name, p.price, p.discount, p.stock, p.images
		 FROM cart_items ci JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1 ORDER BY ci.position, ci.added_at`, cart.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		var product model.Product
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Price,
			&item.Variant.Color, &item.Variant.Size, &item.AddedAt,
			&product.Name, &product.Price, &product.Discount, &product.Stock, &product.Images,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = &model.ProductSummary{
			Name:     product.Name,
			Price:    product.Price,
			Discount: product.Discount,
			Stock:    product.Stock,
			Image:    product.PrimaryImage(),
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	return cart, nil
}

func (r *pgCartRepo) Save(ctx context.Context, cart *model.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}

	var couponCode *string
	couponDiscount := 0
	if cart.Coupon != nil {
		couponCode = &cart.Coupon.Code
		couponDiscount = cart.Coupon.Discount
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// A concurrent first write for the same user resolves to the existing row.
	err = tx.QueryRow(ctx,
		`INSERT INTO carts (id, user_id, coupon_code, coupon_discount, total_items, subtotal, tax, shipping, total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET coupon_code = EXCLUDED.coupon_code, coupon_discount = EXCLUDED.coupon_discount,
		   total_items = EXCLUDED.total_items, subtotal = EXCLUDED.subtotal, tax = EXCLUDED.tax,
		   shipping = EXCLUDED.shipping, total = EXCLUDED.total, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		cart.ID, cart.UserID, couponCode, couponDiscount, cart.TotalItems,
		cart.Subtotal, cart.Tax, cart.Shipping, cart.Total,
	).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	if len(cart.Items) > 0 {
		batch := &pgx.Batch{}
		for i := range cart.Items {
			item := &cart.Items[i]
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			if item.AddedAt.IsZero() {
				item.AddedAt = cart.UpdatedAt
			}
			item.CartID = cart.ID
			batch.Queue(
				`INSERT INTO cart_items (id, cart_id, product_id, quantity, price, selected_color, selected_size, position, added_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				item.ID, item.CartID, item.ProductID, item.Quantity, item.Price,
				item.Variant.Color, item.Variant.Size, i, item.AddedAt,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range cart.Items {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert cart item: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert cart items: %w", err)
		}
	}
	return tx.Commit(ctx)
}
