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

type OrderRepository interface {
	NextSequence(ctx context.Context) (int64, error)
	// Create reserves stock for every item and inserts the order, its items
	// and the first history entry. Any failure rolls back all of it.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error)
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, int, error)
	// Cancel moves a pending or processing order to cancelled and restores
	// its stock. It returns ErrStatusConflict if the order already left
	// those states.
	Cancel(ctx context.Context, order *model.Order, entry model.StatusEntry) error
	UpdateStatus(ctx context.Context, order *model.Order, entry model.StatusEntry) error
	HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, order_number, user_id, shipping_address, billing_address, payment_method,
	subtotal, tax, shipping_cost, discount, total, order_status, is_paid, paid_at, is_delivered, delivered_at,
	tracking_number, carrier, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.ShippingAddress, &o.BillingAddress, &o.PaymentMethod,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.Discount, &o.Total, &o.Status, &o.IsPaid, &o.PaidAt,
		&o.IsDelivered, &o.DeliveredAt, &o.TrackingNumber, &o.Carrier, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *pgOrderRepo) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return seq, nil
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	order.ID = uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range order.Items {
		if err := decrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, order_number, user_id, shipping_address, billing_address, payment_method,
		   subtotal, tax, shipping_cost, discount, total, order_status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.OrderNumber, order.UserID, order.ShippingAddress, order.BillingAddress, order.PaymentMethod,
		order.Subtotal, order.Tax, order.ShippingCost, order.Discount, order.Total, order.Status, order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert order: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID
		batch.Queue(
			`INSERT INTO order_items (id, order_id, product_id, name, image, quantity, price, selected_color, selected_size, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID, item.OrderID, item.ProductID, item.Name, item.Image, item.Quantity, item.Price,
			item.Variant.Color, item.Variant.Size, i,
		)
	}
	for i := range order.History {
		queueHistory(batch, order.ID, &order.History[i])
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return tx.Commit(ctx)
}

func queueHistory(batch *pgx.Batch, orderID uuid.UUID, entry *model.StatusEntry) {
	entry.ID = uuid.New()
	entry.OrderID = orderID
	batch.Queue(
		`INSERT INTO order_status_history (id, order_id, status, note, updated_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.OrderID, entry.Status, entry.Note, entry.UpdatedBy, entry.Timestamp,
	)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, status, note, updated_by, created_at FROM order_status_history
		 WHERE order_id = $1 ORDER BY created_at, id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e model.StatusEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.UpdatedBy, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		order.History = append(order.History, e)
	}
	return order, rows.Err()
}

func (r *pgOrderRepo) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, name, image, quantity, price, selected_color, selected_size
		 FROM order_items WHERE order_id = ANY($1) ORDER BY position`, orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Image,
			&item.Quantity, &item.Price, &item.Variant.Color, &item.Variant.Size); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

func (r *pgOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	return r.list(ctx, `user_id = $1`, userID, limit, offset)
}

func (r *pgOrderRepo) List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, int, error) {
	return r.list(ctx, `($1 = '' OR order_status = $1)`, string(status), limit, offset)
}

func (r *pgOrderRepo) list(ctx context.Context, where string, arg any, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+where+` ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	rows.Close()

	if len(ids) > 0 {
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return orders, total, nil
}

func (r *pgOrderRepo) Cancel(ctx context.Context, order *model.Order, entry model.StatusEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE orders SET order_status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND order_status IN ('pending', 'processing') RETURNING updated_at`, order.ID,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStatusConflict
		}
		return fmt.Errorf("cancel order: %w", err)
	}

	for _, item := range order.Items {
		if err := restoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	if err := insertHistory(ctx, tx, order, entry); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cancel: %w", err)
	}
	order.Status = model.OrderStatusCancelled
	return nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, order *model.Order, entry model.StatusEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE orders SET order_status = $2, tracking_number = $3, carrier = $4, is_delivered = $5, delivered_at = $6,
		 is_paid = $7, paid_at = $8, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		order.ID, order.Status, order.TrackingNumber, order.Carrier, order.IsDelivered, order.DeliveredAt,
		order.IsPaid, order.PaidAt,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update order status: %w", err)
	}

	if err := insertHistory(ctx, tx, order, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertHistory(ctx context.Context, tx pgx.Tx, order *model.Order, entry model.StatusEntry) error {
	batch := &pgx.Batch{}
	queueHistory(batch, order.ID, &entry)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order history: %w", err)
	}
	order.History = append(order.History, entry)
	return nil
}

func (r *pgOrderRepo) HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM orders o JOIN order_items oi ON oi.order_id = o.id
		   WHERE o.user_id = $1 AND oi.product_id = $2 AND o.order_status = 'delivered'
		 )`, userID, productID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check delivered purchase: %w", err)
	}
	return ok, nil
}
