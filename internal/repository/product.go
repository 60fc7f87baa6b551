package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/shopsphere-api/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product, stock *int) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	UpdateRatings(ctx context.Context, id uuid.UUID, summary model.RatingSummary) error
	Suggest(ctx context.Context, q string, limit int) ([]model.Suggestion, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	normalizeProduct(product)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO products (id, name, description, price, original_price, discount, category_id, brand, sku,
			  images, tags, stock, seller_id, featured, new_arrival, best_seller, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.OriginalPrice, product.Discount,
		product.CategoryID, product.Brand, product.SKU, product.Images, product.Tags, product.Stock,
		product.SellerID, product.Featured, product.NewArrival, product.BestSeller, product.Status,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create product: %w", ErrDuplicate)
		}
		return fmt.Errorf("create product: %w", err)
	}

	if err := adjustCategoryCount(ctx, tx, product.CategoryID, 1); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := "SELECT " + strings.Join(productColumns, ", ") + " " + productFrom + " WHERE p.id = $1"
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[model.Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error) {
	query, countQuery, args, countArgs := buildProductQuery(filter)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Product])
	if err != nil {
		return nil, 0, fmt.Errorf("scan product: %w", err)
	}
	return products, total, nil
}

// Update writes every mutable column except stock, which is only replaced
// when stock is non-nil; otherwise the locked row keeps its current value
// so concurrent order decrements survive. Status is derived from the
// resulting stock. It also moves the category product count when the
// product changes category.
func (r *pgProductRepo) Update(ctx context.Context, product *model.Product, stock *int) error {
	if product.Images == nil {
		product.Images = []model.ProductImage{}
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldCategory uuid.UUID
	err = tx.QueryRow(ctx, `SELECT category_id FROM products WHERE id = $1 FOR UPDATE`, product.ID).Scan(&oldCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock product: %w", err)
	}

	query := `UPDATE products SET name=$2, description=$3, price=$4, original_price=$5, discount=$6, category_id=$7,
			  brand=$8, sku=$9, images=$10, tags=$11, stock=GREATEST(COALESCE($12::int, stock), 0),
			  featured=$13, new_arrival=$14, best_seller=$15,
			  status=CASE
			      WHEN COALESCE($12::int, stock) <= 0 THEN 'out-of-stock'
			      WHEN $16::text IN ('out-of-stock', '') THEN 'active'
			      ELSE $16::text
			  END,
			  updated_at=NOW()
			  WHERE id=$1 RETURNING stock, status, updated_at`
	err = tx.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.OriginalPrice, product.Discount,
		product.CategoryID, product.Brand, product.SKU, product.Images, product.Tags, stock,
		product.Featured, product.NewArrival, product.BestSeller, string(product.Status),
	).Scan(&product.Stock, &product.Status, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update product: %w", ErrDuplicate)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if oldCategory != product.CategoryID {
		if err := adjustCategoryCount(ctx, tx, oldCategory, -1); err != nil {
			return err
		}
		if err := adjustCategoryCount(ctx, tx, product.CategoryID, 1); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var categoryID uuid.UUID
	err = tx.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING category_id`, id).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if err := adjustCategoryCount(ctx, tx, categoryID, -1); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgProductRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `UPDATE products SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgProductRepo) UpdateRatings(ctx context.Context, id uuid.UUID, summary model.RatingSummary) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE products SET rating_average = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`,
		id, summary.Average, summary.Count,
	)
	if err != nil {
		return fmt.Errorf("update ratings: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *pgProductRepo) Suggest(ctx context.Context, q string, limit int) ([]model.Suggestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, COALESCE(c.name, '') `+productFrom+`
		 WHERE p.status = 'active' AND p.name ILIKE '%' || $1 || '%'
		 ORDER BY p.sales DESC, p.name LIMIT $2`,
		likeEscaper.Replace(q), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("suggest products: %w", err)
	}
	defer rows.Close()

	suggestions := []model.Suggestion{}
	for rows.Next() {
		var s model.Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

func normalizeProduct(p *model.Product) {
	if p.Images == nil {
		p.Images = []model.ProductImage{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.SyncStockStatus()
}

func adjustCategoryCount(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID, delta int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE categories SET product_count = GREATEST(product_count + $2, 0), updated_at = NOW() WHERE id = $1`,
		categoryID, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust category count: %w", err)
	}
	if ct.RowsAffected() == 0 && delta > 0 {
		return fmt.Errorf("adjust category count: %w", ErrNotFound)
	}
	return nil
}

// decrementStock is the conditional reservation used by order placement.
// It fails with ErrStockConflict instead of letting stock go negative.
func decrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, sales = sales + $2,
		 status = CASE WHEN stock - $2 <= 0 THEN 'out-of-stock' ELSE status END, updated_at = NOW()
		 WHERE id = $1 AND stock >= $2`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrStockConflict)
	}
	return nil
}

// restoreStock undoes decrementStock. A product deleted since the order was
// placed is skipped.
func restoreStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, sales = GREATEST(sales - $2, 0),
		 status = CASE WHEN status = 'out-of-stock' AND stock + $2 > 0 THEN 'active' ELSE status END, updated_at = NOW()
		 WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}
