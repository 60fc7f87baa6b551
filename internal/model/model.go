package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSeller:
		return true
	}
	return false
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Owns reports whether the actor is the owner or an admin.
func (a Actor) Owns(ownerID uuid.UUID) bool {
	return a.ID == ownerID || a.IsAdmin()
}

type User struct {
	ID            uuid.UUID  `db:"id"`
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	Password      string     `db:"password_hash"`
	Role          Role       `db:"role"`
	Avatar        string     `db:"avatar"`
	Phone         string     `db:"phone"`
	Addresses     []Address  `db:"addresses"`
	EmailVerified bool       `db:"email_verified"`
	LastLogin     *time.Time `db:"last_login"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Address is an address book entry, stored inline on the user document.
type Address struct {
	ID        uuid.UUID `json:"id"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"isDefault"`
}

const DefaultCountry = "USA"

const DefaultAvatar = "https://via.placeholder.com/150"
