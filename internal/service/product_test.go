package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

type mockProductRepo struct {
	products   map[uuid.UUID]*model.Product
	lastFilter repository.ProductFilter
	// beforeUpdate runs at the start of Update, standing in for writes that
	// land between the service read and the repository lock.
	beforeUpdate func()
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

// add stores a product with the given stock and unit price.
func (m *mockProductRepo) add(name string, price string, stock int) *model.Product {
	p := &model.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: uuid.New(),
		Status:     model.ProductStatusActive,
		CreatedAt:  time.Now(),
	}
	p.SyncStockStatus()
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range m.products {
		if p.SKU != nil && existing.SKU != nil && *existing.SKU == *p.SKU {
			return repository.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	p.SyncStockStatus()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	m.lastFilter = f
	var out []model.Product
	for _, p := range m.products {
		switch {
		case f.Status != "" && p.Status != f.Status,
			f.CategoryID != nil && p.CategoryID != *f.CategoryID,
			f.ExcludeID != nil && p.ID == *f.ExcludeID,
			f.Featured && !p.Featured,
			f.NewArrival && !p.NewArrival,
			f.BestSeller && !p.BestSeller,
			f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)):
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product, stock *int) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	stored, ok := m.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock = stored.Stock
	if stock != nil {
		p.Stock = *stock
	}
	p.SyncStockStatus()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) IncrementViews(_ context.Context, id uuid.UUID) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Views++
	return nil
}

func (m *mockProductRepo) UpdateRatings(_ context.Context, id uuid.UUID, s model.RatingSummary) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.RatingAverage = s.Average
	p.RatingCount = s.Count
	return nil
}

func (m *mockProductRepo) Suggest(_ context.Context, q string, limit int) ([]model.Suggestion, error) {
	out := []model.Suggestion{}
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) && len(out) < limit {
			out = append(out, model.Suggestion{ID: p.ID, Name: p.Name})
		}
	}
	return out, nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) add(name string, parent *uuid.UUID) *model.Category {
	c := &model.Category{ID: uuid.New(), Name: name, Slug: Slugify(name), ParentID: parent, IsActive: true}
	m.categories[c.ID] = c
	return c
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return repository.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) List(_ context.Context, activeOnly bool) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, c *model.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	c, ok := m.categories[id]
	if !ok || c.ProductCount > 0 {
		return repository.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func newTestProductService() (*ProductService, *mockProductRepo, *mockCategoryRepo) {
	products := newMockProductRepo()
	categories := newMockCategoryRepo()
	return NewProductService(products, categories, nil, time.Minute), products, categories
}

func createProductRequest(categoryID uuid.UUID, stock int) dto.CreateProductRequest {
	price := decimal.NewFromInt(25)
	return dto.CreateProductRequest{
		Name: "Desk Lamp", Description: "LED lamp", Price: &price,
		CategoryID: categoryID, Stock: &stock,
	}
}

func TestProductService_Create(t *testing.T) {
	svc, products, categories := newTestProductService()
	cat := categories.add("Lighting", nil)
	seller := model.Actor{ID: uuid.New(), Role: model.RoleSeller}

	p, err := svc.Create(context.Background(), seller, createProductRequest(cat.ID, 5))
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusActive, p.Status)
	require.NotNil(t, p.SellerID)
	assert.Equal(t, seller.ID, *p.SellerID)
	assert.Len(t, products.products, 1)
}

func TestProductService_Create_ZeroStockIsOutOfStock(t *testing.T) {
	svc, _, categories := newTestProductService()
	cat := categories.add("Lighting", nil)

	p, err := svc.Create(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, createProductRequest(cat.ID, 0))
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusOutOfStock, p.Status)
}

func TestProductService_Create_CategoryNotFound(t *testing.T) {
	svc, _, _ := newTestProductService()
	_, err := svc.Create(context.Background(), model.Actor{ID: uuid.New()}, createProductRequest(uuid.New(), 1))
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	svc, _, categories := newTestProductService()
	cat := categories.add("Lighting", nil)
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	sku := "lamp-1"

	req := createProductRequest(cat.ID, 1)
	req.SKU = &sku
	_, err := svc.Create(context.Background(), admin, req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), admin, req)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestProductService_Get_CountsViews(t *testing.T) {
	svc, products, _ := newTestProductService()
	p := products.add("Mug", "8", 3)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, 1, products.products[p.ID].Views)
}

func TestProductService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestProductService()
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_Update_RestockReactivates(t *testing.T) {
	svc, products, _ := newTestProductService()
	p := products.add("Mug", "8", 0)
	require.Equal(t, model.ProductStatusOutOfStock, p.Status)

	stock := 4
	got, err := svc.Update(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, p.ID,
		dto.UpdateProductRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusActive, got.Status)
	assert.Equal(t, 4, got.Stock)
}

func TestProductService_Update_KeepsConcurrentStockChange(t *testing.T) {
	svc, products, _ := newTestProductService()
	p := products.add("Mug", "8", 10)
	products.beforeUpdate = func() { products.products[p.ID].Stock = 6 }

	price := decimal.NewFromInt(9)
	got, err := svc.Update(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, p.ID,
		dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)
	assert.Equal(t, 6, products.products[p.ID].Stock)
	assert.True(t, price.Equal(products.products[p.ID].Price))
}

func TestProductService_Update_StatusFollowsStoredStock(t *testing.T) {
	svc, products, _ := newTestProductService()
	p := products.add("Mug", "8", 1)
	products.beforeUpdate = func() { products.products[p.ID].Stock = 0 }

	name := "Big Mug"
	got, err := svc.Update(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, p.ID,
		dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, model.ProductStatusOutOfStock, got.Status)
}

func TestProductService_Update_OnlyOwnerOrAdmin(t *testing.T) {
	svc, products, _ := newTestProductService()
	owner := uuid.New()
	p := products.add("Mug", "8", 2)
	p.SellerID = &owner
	name := "Big Mug"

	_, err := svc.Update(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleSeller}, p.ID,
		dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProductAccessDenied)

	got, err := svc.Update(context.Background(), model.Actor{ID: owner, Role: model.RoleSeller}, p.ID,
		dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", got.Name)
}

func TestProductService_Delete(t *testing.T) {
	svc, products, _ := newTestProductService()
	p := products.add("Mug", "8", 2)

	err := svc.Delete(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, p.ID)
	require.NoError(t, err)
	assert.Empty(t, products.products)

	err = svc.Delete(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Related(t *testing.T) {
	svc, products, _ := newTestProductService()
	p := products.add("Mug", "8", 2)
	sibling := products.add("Cup", "6", 2)
	sibling.CategoryID = p.CategoryID
	products.add("Chair", "60", 2)

	related, err := svc.Related(context.Background(), p.ID, 0)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, sibling.ID, related[0].ID)
	assert.Equal(t, relatedLimit, products.lastFilter.Limit)
	assert.Equal(t, []string{"-rating"}, products.lastFilter.Sort)
	assert.Equal(t, model.ProductStatusActive, products.lastFilter.Status)
}

func TestProductService_BestSellers(t *testing.T) {
	svc, products, _ := newTestProductService()
	top := products.add("Mug", "8", 2)
	top.BestSeller = true
	products.add("Cup", "6", 2)

	list, err := svc.BestSellers(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, top.ID, list[0].ID)
	assert.Equal(t, []string{"-sales"}, products.lastFilter.Sort)
	assert.Equal(t, featuredLimit, products.lastFilter.Limit)
}

func TestProductService_List_BuildsFilter(t *testing.T) {
	svc, products, _ := newTestProductService()
	cat := uuid.New()
	minPrice := 10.0

	q := dto.ListProductsQuery{
		Pagination: dto.Pagination{Page: 2, Limit: 12},
		Category:   cat.String(),
		MinPrice:   &minPrice,
		Sort:       "price,-createdAt",
		Fields:     "name, price",
	}
	_, _, err := svc.List(context.Background(), q)
	require.NoError(t, err)

	f := products.lastFilter
	require.NotNil(t, f.CategoryID)
	assert.Equal(t, cat, *f.CategoryID)
	assert.True(t, decimal.NewFromInt(10).Equal(*f.MinPrice))
	assert.Equal(t, []string{"price", "-createdAt"}, f.Sort)
	assert.Equal(t, []string{"name", "price"}, f.Fields)
	assert.Equal(t, 12, f.Offset)
}
