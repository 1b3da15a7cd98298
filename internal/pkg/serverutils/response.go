package serverutils

import (
	"errors"

	"notefiber-editor-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Details any    `json:"details,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// ErrorHandlerMiddleware renders any error returned down the chain as a
// BaseResponse. DomainErrors keep their status; fiber errors keep theirs;
// everything else is a 500 with a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, code, message, details := resolveError(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"error":  err.Error(),
			})
		}

		return ctx.Status(status).JSON(BaseResponse[any]{
			Success: false,
			Code:    code,
			Message: message,
			Details: details,
		})
	}
}

func resolveError(err error) (int, string, string, any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, "HTTP_ERROR", fiberErr.Message, nil
	}
	return fiber.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
