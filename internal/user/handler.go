package user

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/auth"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
	"github.com/wichananm65/sheshape-backend/internal/validation"
)

var sortableFields = map[string]string{
	"id":        "id",
	"email":     "email",
	"createdAt": "created_at",
}

type Handler struct {
	service   *Service
	validator *validation.Validator
	jwtSecret string
	jwtTTL    time.Duration
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type statusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func NewHandler(service *Service, v *validation.Validator, jwtSecret string, jwtTTL time.Duration) *Handler {
	return &Handler{service: service, validator: v, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Post("/api/auth/sign-in", h.login)
	app.Post("/api/auth/sign-up", h.register)
}

// RegisterProtectedRoutes mounts the admin user management endpoints.
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	admin := auth.RequireRole(string(RoleAdmin))
	app.Get("/api/users", admin, h.getUsers)
	app.Get("/api/users/:userId<int>", admin, h.getUser)
	app.Patch("/api/users/:userId<int>/status", admin, h.updateStatus)
	app.Delete("/api/users/:userId<int>", admin, h.deleteUser)
}

// RequireActive runs after the JWT middleware and rejects tokens whose account
// was disabled or removed after the token was issued.
func RequireActive(service *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.FromCtx(c)
		if err != nil {
			return err
		}
		u, err := service.GetByID(c.UserContext(), p.UserID)
		if errors.Is(err, ErrNotFound) {
			return apperror.Unauthorized("unauthorized")
		}
		if err != nil {
			return err
		}
		if !u.IsActive {
			return apperror.Wrap(fiber.StatusForbidden, ErrDisabled, "user account is disabled")
		}
		return c.Next()
	}
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(credentialsRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return err
	}

	user, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	token, err := auth.IssueToken(h.jwtSecret, h.jwtTTL, auth.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(credentialsRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return err
	}

	created, err := h.service.Register(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	page, err := pagination.FromQuery(c, sortableFields, "id")
	if err != nil {
		return err
	}
	users, err := h.service.List(c.UserContext(), page)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return err
	}

	updated, err := h.service.SetActive(c.UserContext(), id, *payload.Active)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func userIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("invalid user id")
	}
	return uint(id), nil
}
