package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/repository"
)

const (
	dashboardRecentOrders = 10
	dashboardTopProducts  = 5
	dashboardMonths       = 6
)

// AdminService covers the back-office reads and user management. Product
// and order writes go through ProductService and OrderService.
type AdminService struct {
	statsRepo repository.StatsRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

func NewAdminService(statsRepo repository.StatsRepository, userRepo repository.UserRepository) *AdminService {
	return &AdminService{statsRepo: statsRepo, userRepo: userRepo, now: time.Now}
}

// Dashboard aggregates store-wide counters. Monthly revenue covers the
// current month and the five before it.
func (s *AdminService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(dashboardMonths - 1), 0)

	stats, err := s.statsRepo.Dashboard(ctx, dashboardRecentOrders, dashboardTopProducts, since)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context, q dto.ListUsersQuery) ([]model.User, int, error) {
	users, total, err := s.userRepo.List(ctx, model.Role(q.Role), q.Limit, q.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			return nil, invalidInput("Invalid role")
		}
		user.Role = role
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.EmailVerified != nil {
		user.EmailVerified = *req.EmailVerified
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the account together with its cart, reviews and
// wishlist. Orders are kept for bookkeeping.
func (s *AdminService) DeleteUser(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if actor.ID == id {
		return invalidInput("Admins cannot delete their own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
