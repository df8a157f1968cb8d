package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// AdminRole bypasses self-identity checks.
const AdminRole = "ADMIN"

// Principal is the caller identified by the JWT.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

// IssueToken signs an HS256 token carrying the user id, email and role.
func IssueToken(secret string, ttl time.Duration, p Principal) (string, error) {
	claims := jwt.MapClaims{
		"user_id": p.UserID,
		"email":   p.Email,
		"role":    p.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Middleware verifies the bearer token and stores it in c.Locals("user").
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

// FromCtx extracts the principal from the JWT stored in c.Locals("user").
func FromCtx(c *fiber.Ctx) (Principal, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Principal{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fiber.ErrUnauthorized
	}

	id, ok := claimID(claims["user_id"])
	if !ok {
		return Principal{}, fiber.ErrUnauthorized
	}
	p := Principal{UserID: id}
	p.Email, _ = claims["email"].(string)
	role, _ := claims["role"].(string)
	p.Role = strings.ToUpper(role)
	return p, nil
}

func claimID(raw any) (uint, bool) {
	switch v := raw.(type) {
	case float64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case uint:
		return v, v > 0
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, false
		}
		return uint(id), true
	}
	return 0, false
}

// RequireRole lets the request through only when the caller has one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := FromCtx(c)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if strings.EqualFold(p.Role, r) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}
}

// RequireSelfOrAdmin allows admins, or callers whose id equals the route
// parameter named param.
func RequireSelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := FromCtx(c)
		if err != nil {
			return err
		}
		if p.Role == AdminRole {
			return c.Next()
		}
		id, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
		}
		if uint(id) != p.UserID {
			return fiber.NewError(fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}
