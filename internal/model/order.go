package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Cancellable reports whether a customer may still cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentDebitCard  PaymentMethod = "debit-card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentCOD        PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentCOD:
		return true
	}
	return false
}

type OrderAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

func (a OrderAddress) IsZero() bool { return a == OrderAddress{} }

// OrderItem is a snapshot of the product taken when the order was placed.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Image     string
	Quantity  int
	Price     decimal.Decimal
	Variant   Variant
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusEntry is one row of the append-only status history.
type StatusEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	Note      string
	UpdatedBy *uuid.UUID
	Timestamp time.Time
}

type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	UserID          uuid.UUID
	Items           []OrderItem
	ShippingAddress OrderAddress
	BillingAddress  OrderAddress
	PaymentMethod   PaymentMethod
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	Status          OrderStatus
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	TrackingNumber  string
	Carrier         string
	Notes           string
	History         []StatusEntry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FormatOrderNumber encodes the creation time and a database sequence value.
func FormatOrderNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%d-%05d", t.UnixMilli(), seq)
}

type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventCancelled     OrderEventType = "order.cancelled"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

type OrderEvent struct {
	ID          uuid.UUID        `json:"id"`
	Type        OrderEventType   `json:"type"`
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      uuid.UUID        `json:"user_id"`
	Status      OrderStatus      `json:"status"`
	Items       []OrderEventItem `json:"items"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func NewOrderEvent(t OrderEventType, order *Order) OrderEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return OrderEvent{
		ID:          uuid.New(),
		Type:        t,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Items:       items,
		OccurredAt:  time.Now().UTC(),
	}
}
