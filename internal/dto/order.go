package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/model"
)

type OrderItemRequest struct {
	ProductID     uuid.UUID `json:"product" binding:"required"`
	Quantity      int       `json:"quantity" binding:"required,min=1"`
	SelectedColor string    `json:"selectedColor"`
	SelectedSize  string    `json:"selectedSize"`
}

type OrderAddressRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (a *OrderAddressRequest) Model() model.OrderAddress {
	if a == nil {
		return model.OrderAddress{}
	}
	return model.OrderAddress{
		Name: a.Name, Phone: a.Phone, Street: a.Street, City: a.City,
		State: a.State, ZipCode: a.ZipCode, Country: a.Country,
	}
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest   `json:"items" binding:"required,dive"`
	ShippingAddress *OrderAddressRequest `json:"shippingAddress" binding:"required"`
	BillingAddress  *OrderAddressRequest `json:"billingAddress" binding:"omitempty"`
	PaymentMethod   string               `json:"paymentMethod" binding:"required,paymentmethod"`
	Notes           string               `json:"notes" binding:"max=500"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" binding:"required,orderstatus"`
	TrackingNumber *string `json:"trackingNumber"`
	Carrier        *string `json:"carrier"`
	Note           string  `json:"note" binding:"max=500"`
}

type ListOrdersQuery struct {
	Pagination
	Status string `form:"status" binding:"omitempty,orderstatus"`
}

type OrderItemResponse struct {
	Product       uuid.UUID       `json:"product"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
}

type StatusEntryResponse struct {
	Status    model.OrderStatus `json:"status"`
	Note      string            `json:"note,omitempty"`
	UpdatedBy *uuid.UUID        `json:"updatedBy,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type OrderResponse struct {
	ID              uuid.UUID             `json:"id"`
	OrderNumber     string                `json:"orderNumber"`
	User            uuid.UUID             `json:"user"`
	Items           []OrderItemResponse   `json:"items"`
	ShippingAddress model.OrderAddress    `json:"shippingAddress"`
	BillingAddress  model.OrderAddress    `json:"billingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Tax             decimal.Decimal       `json:"tax"`
	ShippingCost    decimal.Decimal       `json:"shippingCost"`
	Discount        decimal.Decimal       `json:"discount"`
	Total           decimal.Decimal       `json:"total"`
	OrderStatus     model.OrderStatus     `json:"orderStatus"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	IsDelivered     bool                  `json:"isDelivered"`
	DeliveredAt     *time.Time            `json:"deliveredAt,omitempty"`
	TrackingNumber  string                `json:"trackingNumber,omitempty"`
	Carrier         string                `json:"carrier,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	StatusHistory   []StatusEntryResponse `json:"statusHistory,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func NewOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		User:            o.UserID,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingCost:    o.ShippingCost,
		Discount:        o.Discount,
		Total:           o.Total,
		OrderStatus:     o.Status,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			Product:       it.ProductID,
			Name:          it.Name,
			Image:         it.Image,
			Quantity:      it.Quantity,
			Price:         it.Price,
			SelectedColor: it.Variant.Color,
			SelectedSize:  it.Variant.Size,
		})
	}
	for _, h := range o.History {
		resp.StatusHistory = append(resp.StatusHistory, StatusEntryResponse{
			Status: h.Status, Note: h.Note, UpdatedBy: h.UpdatedBy, Timestamp: h.Timestamp,
		})
	}
	return resp
}

func NewOrderList(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
