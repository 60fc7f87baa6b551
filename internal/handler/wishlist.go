package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/service"
)

type WishlistHandler struct {
	wishlistService *service.WishlistService
}

func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) Get(c *gin.Context) {
	products, err := h.wishlistService.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewProductList(products))
}

func (h *WishlistHandler) Add(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	products, err := h.wishlistService.Add(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, "Product added to wishlist", dto.NewProductList(products))
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	products, err := h.wishlistService.Remove(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, "Product removed from wishlist", dto.NewProductList(products))
}

func (h *WishlistHandler) Clear(c *gin.Context) {
	if err := h.wishlistService.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	message(c, "Wishlist cleared", []dto.ProductResponse{})
}
