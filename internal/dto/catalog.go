package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/model"
)

// --- Product ---

type CreateProductRequest struct {
	Name          string               `json:"name" binding:"required,max=200"`
	Description   string               `json:"description" binding:"required,max=2000"`
	Price         *decimal.Decimal     `json:"price" binding:"required"`
	OriginalPrice *decimal.Decimal     `json:"originalPrice"`
	Discount      int                  `json:"discount" binding:"min=0,max=100"`
	CategoryID    uuid.UUID            `json:"category" binding:"required"`
	Brand         string               `json:"brand"`
	SKU           *string              `json:"sku"`
	Images        []model.ProductImage `json:"images"`
	Tags          []string             `json:"tags"`
	Stock         *int                 `json:"stock" binding:"required,min=0"`
	Featured      bool                 `json:"featured"`
	NewArrival    bool                 `json:"newArrival"`
	BestSeller    bool                 `json:"bestSeller"`
	Status        string               `json:"status" binding:"omitempty,oneof=active inactive out-of-stock"`
}

type UpdateProductRequest struct {
	Name          *string               `json:"name" binding:"omitempty,max=200"`
	Description   *string               `json:"description" binding:"omitempty,max=2000"`
	Price         *decimal.Decimal      `json:"price"`
	OriginalPrice *decimal.Decimal      `json:"originalPrice"`
	Discount      *int                  `json:"discount" binding:"omitempty,min=0,max=100"`
	CategoryID    *uuid.UUID            `json:"category"`
	Brand         *string               `json:"brand"`
	SKU           *string               `json:"sku"`
	Images        *[]model.ProductImage `json:"images"`
	Tags          *[]string             `json:"tags"`
	Stock         *int                  `json:"stock" binding:"omitempty,min=0"`
	Featured      *bool                 `json:"featured"`
	NewArrival    *bool                 `json:"newArrival"`
	BestSeller    *bool                 `json:"bestSeller"`
	Status        *string               `json:"status" binding:"omitempty,oneof=active inactive out-of-stock"`
}

type ListProductsQuery struct {
	Pagination
	Search    string   `form:"search"`
	Category  string   `form:"category" binding:"omitempty,uuid"`
	MinPrice  *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice  *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	MinRating *float64 `form:"minRating" binding:"omitempty,min=0,max=5"`
	Featured  bool     `form:"featured"`
	Sort      string   `form:"sort"`
	Fields    string   `form:"fields"`
}

type SearchQuery struct {
	Pagination
	Q         string   `form:"q"`
	Category  string   `form:"category" binding:"omitempty,uuid"`
	MinPrice  *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice  *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	MinRating *float64 `form:"minRating" binding:"omitempty,min=0,max=5"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=relevance price-low price-high rating newest"`
}

type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
	Slug string    `json:"slug,omitempty"`
}

type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ProductResponse struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Description     string               `json:"description,omitempty"`
	Price           decimal.Decimal      `json:"price"`
	OriginalPrice   *decimal.Decimal     `json:"originalPrice,omitempty"`
	Discount        int                  `json:"discount"`
	DiscountedPrice decimal.Decimal      `json:"discountedPrice"`
	Category        CategoryRef          `json:"category"`
	Brand           string               `json:"brand,omitempty"`
	SKU             *string              `json:"sku,omitempty"`
	Images          []model.ProductImage `json:"images"`
	Tags            []string             `json:"tags"`
	Stock           int                  `json:"stock"`
	Ratings         Ratings              `json:"ratings"`
	Seller          *uuid.UUID           `json:"seller,omitempty"`
	Featured        bool                 `json:"featured"`
	NewArrival      bool                 `json:"newArrival"`
	BestSeller      bool                 `json:"bestSeller"`
	Status          model.ProductStatus  `json:"status"`
	Views           int                  `json:"views"`
	Sales           int                  `json:"sales"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func NewProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Discount:        p.Discount,
		DiscountedPrice: p.DiscountedPrice(),
		Category:        CategoryRef{ID: p.CategoryID, Name: p.CategoryName, Slug: p.CategorySlug},
		Brand:           p.Brand,
		SKU:             p.SKU,
		Images:          p.Images,
		Tags:            p.Tags,
		Stock:           p.Stock,
		Ratings:         Ratings{Average: p.RatingAverage, Count: p.RatingCount},
		Seller:          p.SellerID,
		Featured:        p.Featured,
		NewArrival:      p.NewArrival,
		BestSeller:      p.BestSeller,
		Status:          p.Status,
		Views:           p.Views,
		Sales:           p.Sales,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.OriginalPrice.Valid {
		op := p.OriginalPrice.Decimal
		resp.OriginalPrice = &op
	}
	if resp.Images == nil {
		resp.Images = []model.ProductImage{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

func NewProductList(products []model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

// ProjectProducts renders products keeping only the requested fields.
func ProjectProducts(products []model.Product, fields []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(products))
	for i := range products {
		m, err := Project(NewProductResponse(&products[i]), fields)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// --- Category ---

type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,max=50"`
	Description string     `json:"description" binding:"max=500"`
	ParentID    *uuid.UUID `json:"parent"`
	Image       string     `json:"image"`
	IsActive    *bool      `json:"isActive"`
	Order       int        `json:"order"`
}

type UpdateCategoryRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=50"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	ParentID    *uuid.UUID `json:"parent"`
	Image       *string    `json:"image"`
	IsActive    *bool      `json:"isActive"`
	Order       *int       `json:"order"`
}

type CategoryResponse struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Description  string             `json:"description,omitempty"`
	Parent       *uuid.UUID         `json:"parent"`
	Image        string             `json:"image,omitempty"`
	IsActive     bool               `json:"isActive"`
	ProductCount int                `json:"productCount"`
	Order        int                `json:"order"`
	Children     []CategoryResponse `json:"children,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func NewCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		Parent:       c.ParentID,
		Image:        c.Image,
		IsActive:     c.IsActive,
		ProductCount: c.ProductCount,
		Order:        c.SortOrder,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func NewCategoryList(categories []model.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, NewCategoryResponse(&categories[i]))
	}
	return out
}

func NewCategoryTree(nodes []*model.CategoryNode) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(nodes))
	for _, n := range nodes {
		resp := NewCategoryResponse(&n.Category)
		if len(n.Children) > 0 {
			resp.Children = NewCategoryTree(n.Children)
		}
		out = append(out, resp)
	}
	return out
}

type SuggestionQuery struct {
	Q string `form:"q"`
}
