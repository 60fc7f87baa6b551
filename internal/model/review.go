package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

type ReviewImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type Review struct {
	ID        uuid.UUID     `db:"id"`
	ProductID uuid.UUID     `db:"product_id"`
	UserID    uuid.UUID     `db:"user_id"`
	UserName  string        `db:"user_name"`
	Rating    int           `db:"rating"`
	Title     string        `db:"title"`
	Comment   string        `db:"comment"`
	Images    []ReviewImage `db:"images"`
	Verified  bool          `db:"verified"`
	Helpful   int           `db:"helpful"`
	Status    ReviewStatus  `db:"status"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

type RatingSummary struct {
	Average float64
	Count   int
}
