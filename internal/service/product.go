package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

const (
	featuredLimit = 8
	relatedLimit  = 4
)

// ProductCacheKey is the redis key holding a cached product.
func ProductCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	redisClient  *redis.Client
	cacheTTL     time.Duration
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		redisClient:  redisClient,
		cacheTTL:     cacheTTL,
	}
}

// Create stores a product owned by the caller.
func (s *ProductService) Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*model.Product, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	sellerID := actor.ID
	product := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Discount:    req.Discount,
		CategoryID:  req.CategoryID,
		Brand:       req.Brand,
		SKU:         normalizeSKU(req.SKU),
		Images:      req.Images,
		Tags:        req.Tags,
		Stock:       *req.Stock,
		SellerID:    &sellerID,
		Featured:    req.Featured,
		NewArrival:  req.NewArrival,
		BestSeller:  req.BestSeller,
		Status:      model.ProductStatus(req.Status),
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(*req.OriginalPrice)
	}
	if product.Price.IsNegative() {
		return nil, invalidInput("Price cannot be negative")
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.reload(ctx, product)
}

// Get returns a product and counts the view. Reads go through the redis
// cache when one is configured.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.cached(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Invalidate(ctx, id)
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("increment views: %w", err)
	}
	product.Views++
	return product, nil
}

func (s *ProductService) cached(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	cacheKey := ProductCacheKey(id)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var product model.Product
			if json.Unmarshal(cached, &product) == nil {
				return &product, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(product); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, q dto.ListProductsQuery) ([]model.Product, int, error) {
	filter := repository.ProductFilter{
		Search:    strings.TrimSpace(q.Search),
		MinPrice:  decimalPtr(q.MinPrice),
		MaxPrice:  decimalPtr(q.MaxPrice),
		MinRating: q.MinRating,
		Featured:  q.Featured,
		Sort:      dto.SplitList(q.Sort),
		Fields:    dto.SplitList(q.Fields),
		Limit:     q.Limit,
		Offset:    q.Offset(),
	}
	if q.Category != "" {
		id, err := uuid.Parse(q.Category)
		if err != nil {
			return nil, 0, invalidInput("Invalid category id")
		}
		filter.CategoryID = &id
	}
	return s.list(ctx, filter)
}

func (s *ProductService) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	return s.flagged(ctx, repository.ProductFilter{Featured: true, Sort: []string{"-createdAt"}}, limit)
}

func (s *ProductService) NewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	return s.flagged(ctx, repository.ProductFilter{NewArrival: true, Sort: []string{"-createdAt"}}, limit)
}

func (s *ProductService) BestSellers(ctx context.Context, limit int) ([]model.Product, error) {
	return s.flagged(ctx, repository.ProductFilter{BestSeller: true, Sort: []string{"-sales"}}, limit)
}

// Related lists active products of the same category, best rated first.
func (s *ProductService) Related(ctx context.Context, id uuid.UUID, limit int) ([]model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.flagged(ctx, repository.ProductFilter{
		CategoryID: &product.CategoryID,
		ExcludeID:  &product.ID,
		Sort:       []string{"-rating"},
	}, orDefault(limit, relatedLimit))
}

func (s *ProductService) flagged(ctx context.Context, filter repository.ProductFilter, limit int) ([]model.Product, error) {
	filter.Status = model.ProductStatusActive
	filter.Limit = orDefault(limit, featuredLimit)
	products, _, err := s.list(ctx, filter)
	return products, err
}

// AdminList lists every product regardless of status, newest first.
func (s *ProductService) AdminList(ctx context.Context, page dto.Pagination) ([]model.Product, int, error) {
	return s.list(ctx, repository.ProductFilter{Limit: page.Limit, Offset: page.Offset()})
}

func (s *ProductService) list(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (s *ProductService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, invalidInput("Price cannot be negative")
		}
		product.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(*req.OriginalPrice)
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.SKU != nil {
		product.SKU = normalizeSKU(req.SKU)
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.Tags != nil {
		product.Tags = *req.Tags
	}
	if req.Status != nil {
		product.Status = model.ProductStatus(*req.Status)
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.NewArrival != nil {
		product.NewArrival = *req.NewArrival
	}
	if req.BestSeller != nil {
		product.BestSeller = *req.BestSeller
	}

	if err := s.productRepo.Update(ctx, product, req.Stock); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.Invalidate(ctx, id)
	return s.reload(ctx, product)
}

func (s *ProductService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.Invalidate(ctx, id)
	return nil
}

// owned loads a product the actor may modify: its seller or an admin.
func (s *ProductService) owned(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !actor.IsAdmin() && !product.OwnedBy(actor.ID) {
		return nil, ErrProductAccessDenied
	}
	return product, nil
}

func (s *ProductService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

// reload re-reads the product so the category join is populated.
func (s *ProductService) reload(ctx context.Context, product *model.Product) (*model.Product, error) {
	fresh, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if fresh == nil {
		return product, nil
	}
	return fresh, nil
}

// Invalidate drops the cached copy of a product.
func (s *ProductService) Invalidate(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, ProductCacheKey(id))
	}
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*sku))
	if v == "" {
		return nil
	}
	return &v
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
