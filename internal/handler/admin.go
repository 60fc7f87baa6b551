package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewDashboardResponse(stats))
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q dto.ListUsersQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Normalize(defaultAdminLimit)
	users, total, err := h.adminService.ListUsers(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, q.Pagination, len(users), total, dto.NewUserList(users))
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.adminService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewUserResponse(user))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.adminService.DeleteUser(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	message(c, "User deleted successfully", nil)
}
