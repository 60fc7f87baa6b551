package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(tagName)
		_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			return model.OrderStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
			return model.PaymentMethod(fl.Field().String()).Valid()
		})
	}
}

func bindJSON(c *gin.Context, req any) bool {
	return bindWith(c, req, c.ShouldBindJSON)
}

func bindQuery(c *gin.Context, req any) bool {
	return bindWith(c, req, c.ShouldBindQuery)
}

// bindOptionalJSON accepts a missing body, leaving req at its zero value.
func bindOptionalJSON(c *gin.Context, req any) bool {
	return bindWith(c, req, func(obj any) error {
		if err := c.ShouldBindJSON(obj); !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	})
}

func bindWith(c *gin.Context, req any, bind func(any) error) bool {
	err := bind(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  fieldErrors(verrs),
		})
		return false
	}
	fail(c, http.StatusBadRequest, "Invalid request body")
	return false
}

func fieldErrors(verrs validator.ValidationErrors) []dto.FieldError {
	out := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, dto.FieldError{Field: fieldName(fe), Message: fieldMessage(fe)})
	}
	return out
}

// tagName reports fields by their json or form key.
func tagName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func fieldName(fe validator.FieldError) string {
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param()
	case "len":
		return name + " must be " + fe.Param() + " characters"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "orderstatus":
		return "Invalid order status"
	case "paymentmethod":
		return "Invalid payment method"
	}
	return name + " is invalid"
}
