package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
)

type mockCartRepo struct {
	carts map[uuid.UUID]*model.Cart
	saves int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[uuid.UUID]*model.Cart)}
}

func copyCart(c *model.Cart) *model.Cart {
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	if c.Coupon != nil {
		coupon := *c.Coupon
		cp.Coupon = &coupon
	}
	return &cp
}

func (m *mockCartRepo) GetByUser(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

func (m *mockCartRepo) Save(_ context.Context, cart *model.Cart) error {
	m.saves++
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
		cart.CreatedAt = time.Now()
	}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
		if cart.Items[i].AddedAt.IsZero() {
			cart.Items[i].AddedAt = time.Now()
		}
	}
	cart.UpdatedAt = time.Now()
	m.carts[cart.UserID] = copyCart(cart)
	return nil
}

// assertTotals checks the derived cart totals against the pricing formula.
func assertTotals(t *testing.T, c *model.Cart) {
	t.Helper()
	percent := decimal.NewFromInt(int64(c.CouponPercent()))
	want := c.Subtotal.Add(c.Tax).Add(c.Shipping).Sub(c.Subtotal.Mul(percent).Div(decimal.NewFromInt(100)))
	assert.True(t, want.Equal(c.Total), "total %s, want %s", c.Total, want)
}

func TestCartService_GetCart_CreatesEmpty(t *testing.T) {
	carts := newMockCartRepo()
	svc := NewCartService(carts, newMockProductRepo())
	userID := uuid.New()

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 1, carts.saves)

	_, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, carts.saves)
}

func TestCartService_AddItem(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Keyboard", "40", 100)
	svc := NewCartService(newMockCartRepo(), products)

	cart, err := svc.AddItem(context.Background(), uuid.New(), dto.AddCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.TotalItems)
	assert.True(t, decimal.NewFromInt(80).Equal(cart.Subtotal))
	assert.True(t, decimal.Zero.Equal(cart.Shipping))
	assertTotals(t, cart)
}

func TestCartService_AddItem_DefaultsToOne(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Cable", "5", 10)
	svc := NewCartService(newMockCartRepo(), products)

	cart, err := svc.AddItem(context.Background(), uuid.New(), dto.AddCartItemRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("5.99").Equal(cart.Shipping))
	assertTotals(t, cart)
}

func TestCartService_AddItem_RejectsNegativeQuantity(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Cable", "5", 10)
	carts := newMockCartRepo()
	svc := NewCartService(carts, products)

	_, err := svc.AddItem(context.Background(), uuid.New(), dto.AddCartItemRequest{ProductID: p.ID, Quantity: -3})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, carts.carts)
}

func TestCartService_AddItem_SnapshotsDiscountedPrice(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Headphones", "100", 10)
	p.Discount = 25
	svc := NewCartService(newMockCartRepo(), products)

	cart, err := svc.AddItem(context.Background(), uuid.New(), dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75).Equal(cart.Items[0].Price))
}

func TestCartService_AddItem_MergesLines(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Mouse", "20", 10)
	svc := NewCartService(newMockCartRepo(), products)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 3, SelectedColor: "black"})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 3, SelectedColor: "white"})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 6, cart.Items[0].Quantity)

	_, err = svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 5})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	cart, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 6, cart.Items[0].Quantity)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	_, err := svc.AddItem(context.Background(), uuid.New(), dto.AddCartItemRequest{ProductID: uuid.New(), Quantity: 2})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Monitor", "150", 4)
	svc := NewCartService(newMockCartRepo(), products)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.UpdateItem(ctx, userID, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assertTotals(t, cart)

	_, err = svc.UpdateItem(ctx, userID, p.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.UpdateItem(ctx, userID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_UpdateItem_NoCart(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())
	_, err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCartService_RemoveItem_Idempotent(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Webcam", "30", 4)
	svc := NewCartService(newMockCartRepo(), products)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, decimal.Zero.Equal(cart.Subtotal))

	cart, err = svc.RemoveItem(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_ApplyCoupon(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Chair", "100", 4)
	svc := NewCartService(newMockCartRepo(), products)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.ApplyCoupon(ctx, userID, "save10")
	require.NoError(t, err)
	require.NotNil(t, cart.Coupon)
	assert.Equal(t, "SAVE10", cart.Coupon.Code)
	// 100 + 8 tax + 0 shipping - 10
	assert.True(t, decimal.NewFromInt(98).Equal(cart.Total), cart.Total.String())

	cart, err = svc.ApplyCoupon(ctx, userID, "WELCOME")
	require.NoError(t, err)
	assert.Equal(t, 15, cart.Coupon.Discount)
	assertTotals(t, cart)

	_, err = svc.ApplyCoupon(ctx, userID, "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidCoupon)

	cart, err = svc.RemoveCoupon(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, cart.Coupon)
	assert.True(t, decimal.NewFromInt(108).Equal(cart.Total))
}

func TestCartService_Clear(t *testing.T) {
	products := newMockProductRepo()
	p := products.add("Chair", "100", 4)
	svc := NewCartService(newMockCartRepo(), products)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, userID, dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, userID, "SAVE20")
	require.NoError(t, err)

	cart, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Nil(t, cart.Coupon)
	assert.Equal(t, 0, cart.TotalItems)
	assertTotals(t, cart)
}
