package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/shopsphere-api/internal/model"
)

// --- Review ---

type CreateReviewRequest struct {
	Rating  int                 `json:"rating" binding:"required,min=1,max=5"`
	Title   string              `json:"title" binding:"required,max=100"`
	Comment string              `json:"comment" binding:"required,max=1000"`
	Images  []model.ReviewImage `json:"images"`
}

type UpdateReviewRequest struct {
	Rating  *int                 `json:"rating" binding:"omitempty,min=1,max=5"`
	Title   *string              `json:"title" binding:"omitempty,min=1,max=100"`
	Comment *string              `json:"comment" binding:"omitempty,min=1,max=1000"`
	Images  *[]model.ReviewImage `json:"images"`
}

type ReviewStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

type ListReviewsQuery struct {
	Pagination
	Rating int    `form:"rating" binding:"omitempty,min=1,max=5"`
	Sort   string `form:"sort" binding:"omitempty,oneof=newest helpful rating-high rating-low"`
}

type ReviewUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

type ReviewResponse struct {
	ID        uuid.UUID           `json:"id"`
	Product   uuid.UUID           `json:"product"`
	User      ReviewUser          `json:"user"`
	Rating    int                 `json:"rating"`
	Title     string              `json:"title"`
	Comment   string              `json:"comment"`
	Images    []model.ReviewImage `json:"images"`
	Verified  bool                `json:"verified"`
	Helpful   int                 `json:"helpful"`
	Status    model.ReviewStatus  `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func NewReviewResponse(r *model.Review) ReviewResponse {
	images := r.Images
	if images == nil {
		images = []model.ReviewImage{}
	}
	return ReviewResponse{
		ID:        r.ID,
		Product:   r.ProductID,
		User:      ReviewUser{ID: r.UserID, Name: r.UserName},
		Rating:    r.Rating,
		Title:     r.Title,
		Comment:   r.Comment,
		Images:    images,
		Verified:  r.Verified,
		Helpful:   r.Helpful,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func NewReviewList(reviews []model.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, NewReviewResponse(&reviews[i]))
	}
	return out
}

type HelpfulResponse struct {
	Helpful int `json:"helpful"`
}

// --- Admin ---

type ListUsersQuery struct {
	Pagination
	Role string `form:"role" binding:"omitempty,oneof=user admin seller"`
}

type Overview struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type StatusCountResponse struct {
	Status model.OrderStatus `json:"status"`
	Count  int               `json:"count"`
}

type MonthlyRevenueResponse struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type DashboardResponse struct {
	Overview       Overview                 `json:"overview"`
	RecentOrders   []OrderResponse          `json:"recentOrders"`
	TopProducts    []ProductResponse        `json:"topProducts"`
	OrdersByStatus []StatusCountResponse    `json:"ordersByStatus"`
	RevenueByMonth []MonthlyRevenueResponse `json:"revenueByMonth"`
}

func NewDashboardResponse(s *model.DashboardStats) DashboardResponse {
	resp := DashboardResponse{
		Overview: Overview{
			TotalUsers:    s.TotalUsers,
			TotalProducts: s.TotalProducts,
			TotalOrders:   s.TotalOrders,
			TotalRevenue:  s.TotalRevenue,
		},
		RecentOrders:   NewOrderList(s.RecentOrders),
		TopProducts:    NewProductList(s.TopProducts),
		OrdersByStatus: make([]StatusCountResponse, 0, len(s.OrdersByStatus)),
		RevenueByMonth: make([]MonthlyRevenueResponse, 0, len(s.RevenueByMonth)),
	}
	for _, sc := range s.OrdersByStatus {
		resp.OrdersByStatus = append(resp.OrdersByStatus, StatusCountResponse{Status: sc.Status, Count: sc.Count})
	}
	for _, m := range s.RevenueByMonth {
		resp.RevenueByMonth = append(resp.RevenueByMonth, MonthlyRevenueResponse{
			Year: m.Year, Month: m.Month, Revenue: m.Revenue, Orders: m.Orders,
		})
	}
	return resp
}
