package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

func (s *WishlistService) Get(ctx context.Context, userID uuid.UUID) ([]model.Product, error) {
	products, err := s.wishlistRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return products, nil
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) ([]model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	added, err := s.wishlistRepo.Add(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}
	if !added {
		return nil, ErrAlreadyInWishlist
	}
	return s.Get(ctx, userID)
}

// Remove succeeds whether or not the product was on the list.
func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) ([]model.Product, error) {
	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("remove from wishlist: %w", err)
	}
	return s.Get(ctx, userID)
}

func (s *WishlistService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.wishlistRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}
