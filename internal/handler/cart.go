package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), middleware.GetUserID(c))
	h.respond(c, "", cart, err)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.AddItem(c.Request.Context(), middleware.GetUserID(c), req)
	h.respond(c, "Item added to cart", cart, err)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.UpdateItem(c.Request.Context(), middleware.GetUserID(c), productID, req.Quantity)
	h.respond(c, "Cart updated", cart, err)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, valid := paramID(c, "productId")
	if !valid {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetUserID(c), productID)
	h.respond(c, "Item removed from cart", cart, err)
}

func (h *CartHandler) Clear(c *gin.Context) {
	cart, err := h.cartService.Clear(c.Request.Context(), middleware.GetUserID(c))
	h.respond(c, "Cart cleared", cart, err)
}

func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req dto.ApplyCouponRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.ApplyCoupon(c.Request.Context(), middleware.GetUserID(c), req.Code)
	h.respond(c, "Coupon applied successfully", cart, err)
}

func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	cart, err := h.cartService.RemoveCoupon(c.Request.Context(), middleware.GetUserID(c))
	h.respond(c, "Coupon removed", cart, err)
}

func (h *CartHandler) respond(c *gin.Context, msg string, cart *model.Cart, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, msg, dto.NewCartResponse(cart))
}
