package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

var errMissing = errors.New("missing")

func TestHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler})
	app.Get("/not-found", func(c *fiber.Ctx) error {
		return fmt.Errorf("lookup: %w", Wrap(fiber.StatusNotFound, errMissing, "thing not found"))
	})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return Validation(map[string]string{"name": "name is required"})
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("database exploded")
	})

	tests := []struct {
		path       string
		wantStatus int
		wantMsg    string
		wantFields bool
	}{
		{"/not-found", fiber.StatusNotFound, "thing not found", false},
		{"/validation", fiber.StatusBadRequest, "validation failed", true},
		{"/fiber", fiber.StatusForbidden, "access denied", false},
		{"/boom", fiber.StatusInternalServerError, "internal server error", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, res.StatusCode)
			}
			var body struct {
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, body.Message)
			}
			if (len(body.Errors) > 0) != tt.wantFields {
				t.Fatalf("unexpected errors field %v", body.Errors)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(fiber.StatusNotFound, errMissing, "thing not found")
	if !errors.Is(err, errMissing) {
		t.Fatalf("expected wrapped error to match its cause")
	}
	if err.Error() == "" {
		t.Fatalf("expected a message")
	}
}
