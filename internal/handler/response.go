package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/service"
)

const (
	defaultProductLimit = 12
	defaultReviewLimit  = 10
	defaultOrderLimit   = 10
	defaultAdminLimit   = 20
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.Response{Success: true, Data: data})
}

func message(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Message: msg, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, dto.Response{Success: false, Message: msg})
}

func list(c *gin.Context, p dto.Pagination, count, total int, data any) {
	c.JSON(http.StatusOK, dto.ListResponse{
		Success:     true,
		Count:       count,
		Total:       total,
		TotalPages:  dto.TotalPages(total, p.Limit),
		CurrentPage: p.Page,
		Data:        data,
	})
}

// statusFor maps a service error kind onto an HTTP status.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict, true
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidCoupon):
		return http.StatusBadRequest, true
	}
	return http.StatusInternalServerError, false
}

func respondError(c *gin.Context, err error) {
	status, known := statusFor(err)
	if !known {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		fail(c, status, "internal server error")
		return
	}
	fail(c, status, err.Error())
}

// paramID parses a path UUID, answering 400 on failure.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
