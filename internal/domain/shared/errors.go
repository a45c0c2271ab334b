package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so a specific
// message still matches its sentinel through errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInsufficientPayment     = "INSUFFICIENT_PAYMENT"
	CodeUnresolvableBoxFraction = "UNRESOLVABLE_BOX_FRACTION"
	CodeNoOpTransfer            = "NO_OP_TRANSFER"
	CodePermissionDenied        = "PERMISSION_DENIED"
	CodeInvalidState            = "INVALID_STATE"
	CodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound                = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict                = NewDomainError(CodeConflict, "Resource already exists")
	ErrValidationFailed        = NewDomainError(CodeValidationFailed, "Invalid input provided")
	ErrInsufficientStock       = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientPayment     = NewDomainError(CodeInsufficientPayment, "Payments do not cover the order total")
	ErrUnresolvableBoxFraction = NewDomainError(CodeUnresolvableBoxFraction, "Quantity would leave a fractional box")
	ErrNoOpTransfer            = NewDomainError(CodeNoOpTransfer, "Source and destination are the same")
	ErrPermissionDenied        = NewDomainError(CodePermissionDenied, "Not authorized to perform this action")
	ErrInvalidState            = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict     = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NotFoundf returns a NOT_FOUND error with a formatted message
func NotFoundf(format string, args ...any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf(format, args...))
}

// Invalidf returns a VALIDATION_FAILED error with a formatted message
func Invalidf(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidationFailed, fmt.Sprintf(format, args...))
}

// InvalidStatef returns an INVALID_STATE error with a formatted message
func InvalidStatef(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}
