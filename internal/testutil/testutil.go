package testutil

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/database"
)

// OpenDB opens a named in-memory SQLite database with foreign keys enabled
// and migrates models. The database is closed when the test ends.
func OpenDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.Config("silent"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	// one connection keeps the shared in-memory database free of lock errors
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db, models...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// NewApp returns a fiber app using the project error handler with a fake
// auth middleware: X-User-ID and X-User-Role headers become a *jwt.Token in
// c.Locals("user"), the same place the real JWT middleware puts it.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler})
	app.Use(FakeAuth)
	return app
}

func FakeAuth(c *fiber.Ctx) error {
	if v := c.Get("X-User-ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			claims := jwt.MapClaims{"user_id": id, "role": c.Get("X-User-Role", "USER")}
			c.Locals("user", &jwt.Token{Claims: claims})
		}
	}
	return c.Next()
}
