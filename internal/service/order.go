package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/pricing"
	"github.com/flicky/shopsphere-api/internal/repository"
)

// OrderEventPublisher receives order lifecycle events after they commit.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	carts       *CartService
	cache       ProductCache
	publisher   OrderEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	carts *CartService,
	cache ProductCache,
	publisher OrderEventPublisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		cache:       cache,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, invalidInput("Invalid payment method")
	}
	shipping := req.ShippingAddress.Model()
	if shipping.IsZero() {
		return nil, invalidInput("Shipping address is required")
	}
	billing := shipping
	if req.BillingAddress != nil {
		if b := req.BillingAddress.Model(); !b.IsZero() {
			billing = b
		}
	}

	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, invalidInput("Quantity must be at least 1")
		}
		product, err := s.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, newError(ErrNotFound, "Product not found: "+it.ProductID.String())
		}
		if product.Stock < it.Quantity {
			return nil, insufficientStock(product.Name)
		}

		item := model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.PrimaryImage(),
			Quantity:  it.Quantity,
			Price:     product.DiscountedPrice(),
			Variant:   model.Variant{Color: it.SelectedColor, Size: it.SelectedSize},
		}
		subtotal = subtotal.Add(item.LineTotal())
		items = append(items, item)
	}

	// cart coupons do not apply to orders
	totals := pricing.Compute(subtotal, 0)

	seq, err := s.orderRepo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("order number: %w", err)
	}
	now := s.now()
	order := &model.Order{
		OrderNumber:     model.FormatOrderNumber(now, seq),
		UserID:          userID,
		Items:           items,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   method,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingCost:    totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          model.OrderStatusPending,
		Notes:           req.Notes,
		History: []model.StatusEntry{{
			Status:    model.OrderStatusPending,
			Note:      "Order placed",
			UpdatedBy: &userID,
			Timestamp: now,
		}},
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrStockConflict) {
			return nil, newError(ErrInsufficientStock, "Insufficient stock for one or more items")
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.clearAfterOrder(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "clear cart after order", "order_id", order.ID, "error", err)
	}
	s.invalidateItems(ctx, order)
	s.publish(ctx, model.OrderEventCreated, order)
	return order, nil
}

// GetOrder is visible to the owner and to admins.
func (s *OrderService) GetOrder(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !actor.Owns(order.UserID) {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID, page dto.Pagination) ([]model.Order, int, error) {
	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (s *OrderService) ListOrders(ctx context.Context, q dto.ListOrdersQuery) ([]model.Order, int, error) {
	status := model.OrderStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	orders, total, err := s.orderRepo.List(ctx, status, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// CancelOrder is the customer path. Only the owner may cancel, and only
// while the order is pending or processing.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, newError(ErrForbidden, "Not authorized to cancel this order")
	}
	if !order.Status.Cancellable() {
		return nil, ErrOrderNotCancel
	}

	if reason == "" {
		reason = "Cancelled by customer"
	}
	entry := model.StatusEntry{
		Status:    model.OrderStatusCancelled,
		Note:      reason,
		UpdatedBy: &userID,
		Timestamp: s.now(),
	}
	if err := s.orderRepo.Cancel(ctx, order, entry); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrOrderNotCancel
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	s.invalidateItems(ctx, order)
	s.publish(ctx, model.OrderEventCancelled, order)
	return order, nil
}

// UpdateStatus is the admin path: any known status may be set, with no
// transition check and no stock adjustment.
func (s *OrderService) UpdateStatus(ctx context.Context, actor model.Actor, orderID uuid.UUID, req dto.UpdateOrderStatusRequest) (*model.Order, error) {
	status := model.OrderStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	now := s.now()
	order.Status = status
	if req.TrackingNumber != nil && *req.TrackingNumber != "" {
		order.TrackingNumber = *req.TrackingNumber
	}
	if req.Carrier != nil && *req.Carrier != "" {
		order.Carrier = *req.Carrier
	}
	if status == model.OrderStatusDelivered {
		order.IsDelivered = true
		order.DeliveredAt = &now
		if order.PaymentMethod == model.PaymentCOD && !order.IsPaid {
			order.IsPaid = true
			order.PaidAt = &now
		}
	}

	entry := model.StatusEntry{Status: status, Note: req.Note, UpdatedBy: &actor.ID, Timestamp: now}
	if err := s.orderRepo.UpdateStatus(ctx, order, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.publish(ctx, model.OrderEventStatusChanged, order)
	return order, nil
}

// invalidateItems drops cached products whose stock the order just moved.
func (s *OrderService) invalidateItems(ctx context.Context, order *model.Order) {
	if s.cache == nil {
		return
	}
	for _, it := range order.Items {
		s.cache.Invalidate(ctx, it.ProductID)
	}
}

// publish never fails the request; the order is already committed.
func (s *OrderService) publish(ctx context.Context, t model.OrderEventType, order *model.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, model.NewOrderEvent(t, order)); err != nil {
		s.logger.ErrorContext(ctx, "publish order event", "type", t, "order_id", order.ID, "error", err)
	}
}
