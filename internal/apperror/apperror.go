package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Error is an error that knows which HTTP status it should be reported with.
// Fields is only set for validation failures.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(fiber.StatusNotFound, format, args...)
}

func BadRequest(format string, args ...any) *Error {
	return newError(fiber.StatusBadRequest, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(fiber.StatusConflict, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(fiber.StatusForbidden, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newError(fiber.StatusUnauthorized, format, args...)
}

// Validation reports per-field validation messages.
func Validation(fields map[string]string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Message: "validation failed", Fields: fields}
}

// Wrap attaches a status and message to an underlying error, keeping it
// reachable through errors.Is / errors.As.
func Wrap(status int, err error, message string) *Error {
	return &Error{Status: status, Message: message, cause: err}
}

// Handler is installed as fiber's ErrorHandler so handlers can simply
// return domain errors.
func Handler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		body := fiber.Map{"message": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		if appErr.Status >= fiber.StatusInternalServerError {
			log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(appErr.Status).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
}
