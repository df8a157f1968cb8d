package profile

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/auth"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
	"github.com/wichananm65/sheshape-backend/internal/validation"
)

var sortableFields = map[string]string{
	"id":                      "id",
	"userId":                  "user_id",
	"workoutFrequencyPerWeek": "workout_frequency_per_week",
	"createdAt":               "created_at",
}

type Handler struct {
	service   *Service
	validator *validation.Validator
}

func NewHandler(service *Service, v *validation.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

// RegisterProtectedRoutes mounts the profile endpoints. Every route needs an
// authenticated caller.
func (h *Handler) RegisterProtectedRoutes(app fiber.Router) {
	app.Get("/api/profile", h.getCurrentProfile)
	app.Put("/api/profile", h.updateCurrentProfile)
	app.Post("/api/profile/setup", h.setupProfile)

	selfOrAdmin := auth.RequireSelfOrAdmin("userId")
	app.Get("/api/users/:userId<int>/profile", h.getUserProfile)
	app.Put("/api/users/:userId<int>/profile", selfOrAdmin, h.updateUserProfile)
	app.Post("/api/users/:userId<int>/profile/image", selfOrAdmin, h.uploadImage)
	app.Delete("/api/users/:userId<int>/profile/image", selfOrAdmin, h.deleteImage)

	app.Get("/api/fitness-profiles", auth.RequireRole(auth.AdminRole), h.getFitnessProfiles)
}

func (h *Handler) getCurrentProfile(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return err
	}
	res, err := h.service.Get(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *Handler) updateCurrentProfile(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return err
	}
	return h.update(c, p.UserID)
}

func (h *Handler) setupProfile(c *fiber.Ctx) error {
	p, err := auth.FromCtx(c)
	if err != nil {
		return err
	}
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	res, err := h.service.Setup(c.UserContext(), p.UserID, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// getUserProfile is open to any signed-in caller unless the owner chose a
// private profile.
func (h *Handler) getUserProfile(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return err
	}
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	res, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	if res.PrivacyLevel == PrivacyPrivate && caller.UserID != id && caller.Role != auth.AdminRole {
		return apperror.Forbidden("this profile is private")
	}
	return c.JSON(res)
}

func (h *Handler) updateUserProfile(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	return h.update(c, id)
}

func (h *Handler) update(c *fiber.Ctx, userID uint) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	res, err := h.service.Update(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *Handler) parse(c *fiber.Ctx) (Request, error) {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return Request{}, apperror.BadRequest("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (h *Handler) uploadImage(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		// older clients send the file as "file"
		if fh, err = c.FormFile("file"); err != nil {
			return apperror.BadRequest("please select a file to upload")
		}
	}
	f, err := fh.Open()
	if err != nil {
		return apperror.BadRequest("could not read uploaded file")
	}
	defer f.Close()

	url, err := h.service.UploadImage(c.UserContext(), id, fh.Size, f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"filename": url,
		"message":  "Profile image uploaded successfully",
	})
}

func (h *Handler) deleteImage(c *fiber.Ctx) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteImage(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) getFitnessProfiles(c *fiber.Ctx) error {
	page, err := pagination.FromQuery(c, sortableFields, "id")
	if err != nil {
		return err
	}

	filter := FitnessFilter{
		Level: FitnessLevel(c.Query("level")),
		Goal:  FitnessGoal(c.Query("goal")),
	}
	if v := c.Query("minFrequency"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 7 {
			return apperror.BadRequest("minFrequency must be between 1 and 7")
		}
		filter.MinFrequency = n
	}

	res, err := h.service.FitnessProfiles(c.UserContext(), filter, page)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func userIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("invalid user id")
	}
	return uint(id), nil
}
