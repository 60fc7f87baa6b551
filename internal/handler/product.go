package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ListProductsQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Normalize(defaultProductLimit)
	products, total, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	var data any = dto.NewProductList(products)
	if fields := dto.SplitList(q.Fields); len(fields) > 0 {
		if data, err = dto.ProjectProducts(products, fields); err != nil {
			respondError(c, err)
			return
		}
	}
	list(c, q.Pagination, len(products), total, data)
}

func (h *ProductHandler) Featured(c *gin.Context) {
	h.collection(c, h.productService.Featured)
}

func (h *ProductHandler) NewArrivals(c *gin.Context) {
	h.collection(c, h.productService.NewArrivals)
}

func (h *ProductHandler) BestSellers(c *gin.Context) {
	h.collection(c, h.productService.BestSellers)
}

func (h *ProductHandler) collection(c *gin.Context, fetch func(ctx context.Context, limit int) ([]model.Product, error)) {
	products, err := fetch(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewProductList(products))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewProductResponse(product))
}

func (h *ProductHandler) Related(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	products, err := h.productService.Related(c.Request.Context(), id, queryInt(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewProductList(products))
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, dto.NewProductResponse(product))
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewProductResponse(product))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Product deleted successfully", nil)
}

// AdminList backs the admin product table.
func (h *ProductHandler) AdminList(c *gin.Context) {
	var p dto.Pagination
	if !bindQuery(c, &p) {
		return
	}
	p.Normalize(defaultAdminLimit)
	products, total, err := h.productService.AdminList(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, p, len(products), total, dto.NewProductList(products))
}

// queryInt reads an optional positive integer query value; 0 means unset.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
