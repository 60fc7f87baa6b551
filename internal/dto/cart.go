package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/model"
)

type AddCartItemRequest struct {
	ProductID     uuid.UUID `json:"productId" binding:"required"`
	Quantity      int       `json:"quantity" binding:"omitempty,min=1"`
	SelectedColor string    `json:"selectedColor"`
	SelectedSize  string    `json:"selectedSize"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type CouponResponse struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

type CartProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount int             `json:"discount"`
	Stock    int             `json:"stock"`
	Image    string          `json:"image,omitempty"`
}

type CartItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Product       CartProduct     `json:"product"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	AddedAt       time.Time       `json:"addedAt"`
}

type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	User          uuid.UUID          `json:"user"`
	Items         []CartItemResponse `json:"items"`
	AppliedCoupon *CouponResponse    `json:"appliedCoupon,omitempty"`
	TotalItems    int                `json:"totalItems"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Shipping      decimal.Decimal    `json:"shipping"`
	Total         decimal.Decimal    `json:"total"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func NewCartResponse(c *model.Cart) CartResponse {
	resp := CartResponse{
		ID:         c.ID,
		User:       c.UserID,
		Items:      make([]CartItemResponse, 0, len(c.Items)),
		TotalItems: c.TotalItems,
		Subtotal:   c.Subtotal,
		Tax:        c.Tax,
		Shipping:   c.Shipping,
		Total:      c.Total,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Coupon != nil {
		resp.AppliedCoupon = &CouponResponse{Code: c.Coupon.Code, Discount: c.Coupon.Discount}
	}
	for _, item := range c.Items {
		line := CartItemResponse{
			ID:            item.ID,
			Product:       CartProduct{ID: item.ProductID},
			Quantity:      item.Quantity,
			Price:         item.Price,
			SelectedColor: item.Variant.Color,
			SelectedSize:  item.Variant.Size,
			AddedAt:       item.AddedAt,
		}
		if item.Product != nil {
			line.Product.Name = item.Product.Name
			line.Product.Price = item.Product.Price
			line.Product.Discount = item.Product.Discount
			line.Product.Stock = item.Product.Stock
			line.Product.Image = item.Product.Image
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}
