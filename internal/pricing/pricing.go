// Package pricing holds the tax, shipping and coupon rules shared by carts
// and orders.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/model"
)

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingFee       = decimal.RequireFromString("5.99")
)

var hundred = decimal.NewFromInt(100)

var coupons = map[string]int{
	"SAVE10":  10,
	"SAVE20":  20,
	"WELCOME": 15,
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Shipping is free strictly above the threshold.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate)
}

// Compute returns subtotal + tax + shipping − subtotal×couponPercent/100.
func Compute(subtotal decimal.Decimal, couponPercent int) Totals {
	t := Totals{
		Subtotal: subtotal,
		Tax:      Tax(subtotal),
		Shipping: Shipping(subtotal),
		Discount: decimal.Zero,
	}
	if couponPercent > 0 {
		t.Discount = subtotal.Mul(decimal.NewFromInt(int64(couponPercent))).Div(hundred)
	}
	t.Total = t.Subtotal.Add(t.Tax).Add(t.Shipping).Sub(t.Discount)
	return t
}

// Recalculate refreshes every derived field of the cart from its lines and
// coupon.
func Recalculate(c *model.Cart) {
	subtotal := decimal.Zero
	totalItems := 0
	for _, item := range c.Items {
		totalItems += item.Quantity
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	t := Compute(subtotal, c.CouponPercent())
	c.TotalItems = totalItems
	c.Subtotal = t.Subtotal
	c.Tax = t.Tax
	c.Shipping = t.Shipping
	c.Total = t.Total
}

// LookupCoupon matches code case-insensitively against the coupon table.
func LookupCoupon(code string) (model.AppliedCoupon, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	discount, ok := coupons[normalized]
	if !ok {
		return model.AppliedCoupon{}, false
	}
	return model.AppliedCoupon{Code: normalized, Discount: discount}, true
}
