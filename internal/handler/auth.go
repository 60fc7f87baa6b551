package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, resp)
}

// Logout is a no-op: tokens are stateless and the client discards them.
func (h *AuthHandler) Logout(c *gin.Context) {
	message(c, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewUserResponse(user))
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewUserResponse(user))
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req dto.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.UpdatePassword(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, "Password updated successfully", resp)
}

func (h *AuthHandler) AddAddress(c *gin.Context) {
	var req dto.AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.AddAddress(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, user.Addresses)
}

func (h *AuthHandler) RemoveAddress(c *gin.Context) {
	addressID, valid := paramID(c, "addressId")
	if !valid {
		return
	}
	user, err := h.authService.RemoveAddress(c.Request.Context(), middleware.GetUserID(c), addressID)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, "Address removed", dto.NewUserResponse(user).Addresses)
}
