package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_DiscountedPrice(t *testing.T) {
	p := &Product{Price: decimal.RequireFromString("80"), Discount: 25}
	assert.True(t, p.DiscountedPrice().Equal(decimal.NewFromInt(60)))

	p.Discount = 0
	assert.True(t, p.DiscountedPrice().Equal(decimal.NewFromInt(80)))
}

func TestProduct_SyncStockStatus(t *testing.T) {
	p := &Product{Stock: 0, Status: ProductStatusActive}
	p.SyncStockStatus()
	assert.Equal(t, ProductStatusOutOfStock, p.Status)

	p.Stock = 4
	p.SyncStockStatus()
	assert.Equal(t, ProductStatusActive, p.Status)

	p.Status = ProductStatusInactive
	p.SyncStockStatus()
	assert.Equal(t, ProductStatusInactive, p.Status, "positive stock keeps a manual inactive status")
}

func TestProduct_PrimaryImage(t *testing.T) {
	p := &Product{Images: []ProductImage{{URL: "a.png"}, {URL: "b.png", IsPrimary: true}}}
	assert.Equal(t, "b.png", p.PrimaryImage())

	p.Images = []ProductImage{{URL: "a.png"}}
	assert.Equal(t, "a.png", p.PrimaryImage())

	p.Images = nil
	assert.Empty(t, p.PrimaryImage())
}

func TestCart_RemoveProduct(t *testing.T) {
	keep, drop := uuid.New(), uuid.New()
	c := &Cart{Items: []CartItem{{ProductID: drop}, {ProductID: keep}, {ProductID: drop}}}
	c.RemoveProduct(drop)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, keep, c.Items[0].ProductID)
	assert.Equal(t, -1, c.FindItem(drop))
}

func TestOrderStatus_Cancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusProcessing.Cancellable())
	for _, s := range []OrderStatus{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded} {
		assert.False(t, s.Cancellable(), s)
	}
	assert.False(t, OrderStatus("lost").Valid())
}

func TestFormatOrderNumber(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "ORD-1700000000123-00042", FormatOrderNumber(ts, 42))
}

func TestActor_Owns(t *testing.T) {
	owner := uuid.New()
	assert.True(t, Actor{ID: owner, Role: RoleUser}.Owns(owner))
	assert.False(t, Actor{ID: uuid.New(), Role: RoleUser}.Owns(owner))
	assert.True(t, Actor{ID: uuid.New(), Role: RoleAdmin}.Owns(owner))
}
