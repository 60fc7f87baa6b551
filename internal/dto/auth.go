package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"omitempty,len=10,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=50"`
	Phone  *string `json:"phone" binding:"omitempty,len=10,numeric"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type AddressRequest struct {
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// AdminUpdateUserRequest is the admin patch; nil fields are left unchanged.
type AdminUpdateUserRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=50"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Role          *string `json:"role" binding:"omitempty,oneof=user admin seller"`
	Phone         *string `json:"phone" binding:"omitempty,len=10,numeric"`
	EmailVerified *bool   `json:"emailVerified"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          model.Role      `json:"role"`
	Avatar        string          `json:"avatar"`
	Phone         string          `json:"phone,omitempty"`
	Addresses     []model.Address `json:"addresses"`
	EmailVerified bool            `json:"emailVerified"`
	LastLogin     *time.Time      `json:"lastLogin,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func NewUserResponse(u *model.User) UserResponse {
	addresses := u.Addresses
	if addresses == nil {
		addresses = []model.Address{}
	}
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Avatar:        u.Avatar,
		Phone:         u.Phone,
		Addresses:     addresses,
		EmailVerified: u.EmailVerified,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

func NewUserList(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
