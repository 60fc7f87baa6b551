package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out-of-stock"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	}
	return false
}

type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

type Product struct {
	ID            uuid.UUID           `db:"id"`
	Name          string              `db:"name"`
	Description   string              `db:"description"`
	Price         decimal.Decimal     `db:"price"`
	OriginalPrice decimal.NullDecimal `db:"original_price"`
	Discount      int                 `db:"discount"`
	CategoryID    uuid.UUID           `db:"category_id"`
	CategoryName  string              `db:"category_name"`
	CategorySlug  string              `db:"category_slug"`
	Brand         string              `db:"brand"`
	SKU           *string             `db:"sku"`
	Images        []ProductImage      `db:"images"`
	Tags          []string            `db:"tags"`
	Stock         int                 `db:"stock"`
	RatingAverage float64             `db:"rating_average"`
	RatingCount   int                 `db:"rating_count"`
	SellerID      *uuid.UUID          `db:"seller_id"`
	Featured      bool                `db:"featured"`
	NewArrival    bool                `db:"new_arrival"`
	BestSeller    bool                `db:"best_seller"`
	Status        ProductStatus       `db:"status"`
	Views         int                 `db:"views"`
	Sales         int                 `db:"sales"`
	CreatedAt     time.Time           `db:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice is price × (1 − discount/100).
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price.Mul(decimal.NewFromInt(int64(100 - p.Discount))).Div(hundred)
}

// PrimaryImage returns the image flagged primary, else the first image.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// SyncStockStatus applies the stock/status invariant. It must run before
// every product write that may change stock.
func (p *Product) SyncStockStatus() {
	if p.Stock <= 0 {
		p.Stock = 0
		p.Status = ProductStatusOutOfStock
		return
	}
	if p.Status == ProductStatusOutOfStock || p.Status == "" {
		p.Status = ProductStatusActive
	}
}

func (p *Product) OwnedBy(userID uuid.UUID) bool {
	return p.SellerID != nil && *p.SellerID == userID
}

// ProductSummary is the product data attached to cart lines on read.
type ProductSummary struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Discount int             `json:"discount"`
	Stock    int             `json:"stock"`
	Image    string          `json:"image,omitempty"`
}

type Suggestion struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
}

type Category struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	Slug         string     `db:"slug"`
	Description  string     `db:"description"`
	ParentID     *uuid.UUID `db:"parent_id"`
	Image        string     `db:"image"`
	IsActive     bool       `db:"is_active"`
	ProductCount int        `db:"product_count"`
	SortOrder    int        `db:"sort_order"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

type CategoryNode struct {
	Category
	Children []*CategoryNode
}
