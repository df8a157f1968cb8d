package auth

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

const testSecret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		p, err := FromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(p)
	})
	app.Get("/admin", RequireRole(AdminRole), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Put("/users/:userId", RequireSelfOrAdmin("userId"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func bearer(t *testing.T, p Principal) string {
	t.Helper()
	tok, err := IssueToken(testSecret, time.Hour, p)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	app := newApp()
	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestFromCtx_ReadsClaims(t *testing.T) {
	app := newApp()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", bearer(t, Principal{UserID: 7, Email: "a@example.com", Role: "user"}))
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	body := string(b)
	if !strings.Contains(body, `"UserID":7`) || !strings.Contains(body, `"Role":"USER"`) {
		t.Fatalf("unexpected principal %s", body)
	}
}

func TestRequireRole(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, Principal{UserID: 1, Role: "USER"}))
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", bearer(t, Principal{UserID: 1, Role: AdminRole}))
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", res.StatusCode)
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	app := newApp()
	cases := []struct {
		name   string
		p      Principal
		path   string
		status int
	}{
		{"self", Principal{UserID: 5, Role: "USER"}, "/users/5", fiber.StatusOK},
		{"other user", Principal{UserID: 5, Role: "USER"}, "/users/6", fiber.StatusForbidden},
		{"admin on other user", Principal{UserID: 1, Role: AdminRole}, "/users/6", fiber.StatusOK},
		{"bad id", Principal{UserID: 5, Role: "USER"}, "/users/abc", fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", tc.path, nil)
			req.Header.Set("Authorization", bearer(t, tc.p))
			res, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if res.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, res.StatusCode)
			}
		})
	}
}
