package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the customer's option selection. It is informational only and
// never used to match cart lines.
type Variant struct {
	Color string `json:"selectedColor,omitempty"`
	Size  string `json:"selectedSize,omitempty"`
}

type Cart struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Items      []CartItem
	Coupon     *AppliedCoupon
	TotalItems int
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Variant   Variant
	AddedAt   time.Time

	// Product is populated on reads and ignored on writes.
	Product *ProductSummary
}

type AppliedCoupon struct {
	Code     string
	Discount int
}

// FindItem returns the index of the line holding productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveProduct drops every line for productID.
func (c *Cart) RemoveProduct(productID uuid.UUID) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

func (c *Cart) Empty() {
	c.Items = nil
	c.Coupon = nil
}

func (c *Cart) CouponPercent() int {
	if c.Coupon == nil {
		return 0
	}
	return c.Coupon.Discount
}
