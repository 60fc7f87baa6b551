package service

import "errors"

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCoupon     = errors.New("invalid coupon")
)

// Error is a client-facing failure: Error() is the message shown to the
// caller, Unwrap() yields its kind.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

var (
	ErrUserNotFound     = newError(ErrNotFound, "User not found")
	ErrProductNotFound  = newError(ErrNotFound, "Product not found")
	ErrCategoryNotFound = newError(ErrNotFound, "Category not found")
	ErrCartNotFound     = newError(ErrNotFound, "Cart not found")
	ErrCartItemNotFound = newError(ErrNotFound, "Item not found in cart")
	ErrOrderNotFound    = newError(ErrNotFound, "Order not found")
	ErrReviewNotFound   = newError(ErrNotFound, "Review not found")
	ErrAddressNotFound  = newError(ErrNotFound, "Address not found")

	ErrUserAlreadyExists  = newError(ErrDuplicate, "User already exists with this email")
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid credentials")
	ErrWrongPassword      = newError(ErrUnauthorized, "Current password is incorrect")

	ErrEmptyOrder        = newError(ErrInvalidInput, "No order items")
	ErrOrderAccessDenied = newError(ErrForbidden, "Not authorized to access this order")
	ErrOrderNotCancel    = newError(ErrInvalidTransition, "Order cannot be cancelled at this stage")
	ErrInvalidStatus     = newError(ErrInvalidInput, "Invalid order status")

	ErrDuplicateReview     = newError(ErrDuplicate, "You have already reviewed this product")
	ErrReviewAccessDenied  = newError(ErrForbidden, "Not authorized to modify this review")
	ErrProductAccessDenied = newError(ErrForbidden, "Not authorized to modify this product")

	ErrCategoryHasProducts = newError(ErrInvalidInput, "Cannot delete category with products")
	ErrCategoryCycle       = newError(ErrInvalidInput, "Category cannot be its own ancestor")
	ErrDuplicateCategory   = newError(ErrDuplicate, "Category already exists")
	ErrDuplicateSKU        = newError(ErrDuplicate, "Product with this SKU already exists")

	ErrInvalidCouponCode = newError(ErrInvalidCoupon, "Invalid coupon code")
	ErrAlreadyInWishlist = newError(ErrDuplicate, "Product already in wishlist")
	ErrSearchQuery       = newError(ErrInvalidInput, "Search query is required")
)

func insufficientStock(productName string) error {
	return newError(ErrInsufficientStock, "Insufficient stock for "+productName)
}

func invalidInput(msg string) error {
	return newError(ErrInvalidInput, msg)
}
