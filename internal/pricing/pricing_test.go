package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestShipping_Threshold(t *testing.T) {
	assert.True(t, Shipping(dec("50")).Equal(dec("5.99")), "exactly 50 still pays shipping")
	assert.True(t, Shipping(dec("50.01")).IsZero())
	assert.True(t, Shipping(decimal.Zero).Equal(dec("5.99")))
}

func TestCompute_WithCoupon(t *testing.T) {
	got := Compute(dec("100"), 20)
	assert.True(t, got.Tax.Equal(dec("8")))
	assert.True(t, got.Shipping.IsZero())
	assert.True(t, got.Discount.Equal(dec("20")))
	assert.True(t, got.Total.Equal(dec("88")), got.Total.String())
}

func TestRecalculate_Invariant(t *testing.T) {
	cases := []struct {
		name   string
		items  []model.CartItem
		coupon *model.AppliedCoupon
	}{
		{name: "empty"},
		{name: "under threshold", items: []model.CartItem{{Quantity: 2, Price: dec("9.99")}}},
		{
			name:   "over threshold with coupon",
			items:  []model.CartItem{{Quantity: 3, Price: dec("19.99")}, {Quantity: 1, Price: dec("16.9915")}},
			coupon: &model.AppliedCoupon{Code: "WELCOME", Discount: 15},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := &model.Cart{ID: uuid.New(), Items: tc.items, Coupon: tc.coupon}
			Recalculate(cart)

			want := cart.Subtotal.Add(cart.Subtotal.Mul(dec("0.08"))).
				Add(Shipping(cart.Subtotal)).
				Sub(cart.Subtotal.Mul(decimal.NewFromInt(int64(cart.CouponPercent()))).Div(decimal.NewFromInt(100)))
			assert.True(t, cart.Total.Equal(want), "total %s want %s", cart.Total, want)
			assert.True(t, cart.Tax.Equal(cart.Subtotal.Mul(dec("0.08"))))
		})
	}
}

func TestRecalculate_Counts(t *testing.T) {
	cart := &model.Cart{Items: []model.CartItem{
		{Quantity: 2, Price: dec("10")},
		{Quantity: 3, Price: dec("5")},
	}}
	Recalculate(cart)
	assert.Equal(t, 5, cart.TotalItems)
	assert.True(t, cart.Subtotal.Equal(dec("35")))
}

func TestLookupCoupon(t *testing.T) {
	c, ok := LookupCoupon(" save10 ")
	require.True(t, ok)
	assert.Equal(t, "SAVE10", c.Code)
	assert.Equal(t, 10, c.Discount)

	_, ok = LookupCoupon("FREEBIE")
	assert.False(t, ok)
}
