package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// DomainError is an error that knows its HTTP status and a stable code.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewDomainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func BadRequest(message string, details any) *DomainError {
	return NewDomainError(fiber.StatusBadRequest, "BAD_REQUEST", message, details)
}

func Unauthorized(message string) *DomainError {
	return NewDomainError(fiber.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func NotFound(message string) *DomainError {
	return NewDomainError(fiber.StatusNotFound, "NOT_FOUND", message, nil)
}

func Conflict(code, message string) *DomainError {
	return NewDomainError(fiber.StatusConflict, code, message, nil)
}
