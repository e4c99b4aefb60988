package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"filegate/internal/http/middleware"
	"filegate/internal/service"
)

// errorResponse is the uniform failure envelope. Every endpoint answers with
// {success: false, error, code} so clients can branch on the code alone.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorResponse{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: requestIDFromCtx(c),
	})
}

// writeServiceError maps the typed service errors onto the gateway's error
// taxonomy: validation failures name the violated constraint, authorization
// failures surface as a plain access-denied, everything else is internal.
func writeServiceError(c *fiber.Ctx, err error) error {
	var sizeErr *service.SizeLimitError
	var typeErr *service.UnsupportedTypeError

	switch {
	case errors.Is(err, service.ErrFileRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.As(err, &sizeErr):
		return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", sizeErr.Error())
	case errors.As(err, &typeErr):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", typeErr.Error())
	case errors.Is(err, service.ErrFileKeyRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_KEY_REQUIRED", "fileKey is required")
	case errors.Is(err, service.ErrFileNameRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_NAME_REQUIRED", "fileName is required when requesting a download")
	case errors.Is(err, service.ErrAccessDenied):
		return writeError(c, fiber.StatusForbidden, "ACCESS_DENIED", "access denied")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusRequestEntityTooLarge:
			// Bodies that blow past the transport limit never reach the
			// upload handler, so the size-limit answer is produced here.
			return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds the maximum allowed size")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
