package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/pricing"
	"github.com/flicky/shopsphere-api/internal/repository"
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}
	return s.save(ctx, &model.Cart{UserID: userID})
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req dto.AddCartItemRequest) (*model.Cart, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, invalidInput("Quantity must be at least 1")
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(product.ID); idx >= 0 {
		// the stock check covers the whole resulting line
		merged := cart.Items[idx].Quantity + quantity
		if product.Stock < merged {
			return nil, insufficientStock(product.Name)
		}
		cart.Items[idx].Quantity = merged
	} else {
		if product.Stock < quantity {
			return nil, insufficientStock(product.Name)
		}
		cart.Items = append(cart.Items, model.CartItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.DiscountedPrice(),
			Variant:   model.Variant{Color: req.SelectedColor, Size: req.SelectedSize},
		})
	}
	return s.save(ctx, cart)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, invalidInput("Quantity must be at least 1")
	}
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, ErrCartItemNotFound
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Stock < quantity {
		return nil, insufficientStock(product.Name)
	}

	cart.Items[idx].Quantity = quantity
	return s.save(ctx, cart)
}

// RemoveItem drops every line of the product. Removing an absent product
// succeeds.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.RemoveProduct(productID)
	return s.save(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Empty()
	return s.save(ctx, cart)
}

func (s *CartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*model.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	coupon, ok := pricing.LookupCoupon(code)
	if !ok {
		return nil, ErrInvalidCouponCode
	}
	cart.Coupon = &coupon
	return s.save(ctx, cart)
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Coupon = nil
	return s.save(ctx, cart)
}

// clearAfterOrder empties the cart if the user has one.
func (s *CartService) clearAfterOrder(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil
	}
	cart.Empty()
	_, err = s.save(ctx, cart)
	return err
}

func (s *CartService) existing(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// save recomputes the derived totals, persists, and returns the cart as
// read back with product details.
func (s *CartService) save(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	pricing.Recalculate(cart)
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	saved, err := s.cartRepo.GetByUser(ctx, cart.UserID)
	if err != nil {
		return nil, fmt.Errorf("reload cart: %w", err)
	}
	if saved == nil {
		return cart, nil
	}
	return saved, nil
}
