package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
	"github.com/wichananm65/sheshape-backend/internal/storage"
	"github.com/wichananm65/sheshape-backend/internal/user"
)

const imageDir = "profiles"

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Users is the part of the user service profiles depend on.
type Users interface {
	GetByID(ctx context.Context, id uint) (user.User, error)
	MarkProfileCompleted(ctx context.Context, id uint) error
}

type Service struct {
	repo     Repository
	users    Users
	files    storage.Storage
	maxImage int64
}

func NewService(repo Repository, users Users, files storage.Storage, maxImageBytes int64) *Service {
	return &Service{repo: repo, users: users, files: files, maxImage: maxImageBytes}
}

// Get returns the combined view for a user. A user without a profile yields
// only the account fields.
func (s *Service) Get(ctx context.Context, userID uint) (Response, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	p, f, err := s.load(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	return newResponse(u, p, f), nil
}

func (s *Service) load(ctx context.Context, userID uint) (*Profile, *FitnessProfile, error) {
	var (
		p *Profile
		f *FitnessProfile
	)
	stored, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == nil:
		p = &stored
	case !errors.Is(err, ErrNotFound):
		return nil, nil, err
	}
	fit, err := s.repo.GetFitness(ctx, userID)
	switch {
	case err == nil:
		f = &fit
	case !errors.Is(err, ErrNotFound):
		return nil, nil, err
	}
	return p, f, nil
}

// Setup creates the profile of a user, or merges into the existing one, and
// marks the user's profile as completed.
func (s *Service) Setup(ctx context.Context, userID uint, req Request) (Response, error) {
	if errs := req.nameErrors(true); len(errs) > 0 {
		return Response{}, apperror.Validation(errs)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return Response{}, err
	}
	p, f, err := s.load(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	if p == nil {
		p = &Profile{UserID: userID, Preferences: defaultPreferences()}
	}
	if f == nil {
		f = &FitnessProfile{UserID: userID}
	}
	req.applyProfile(p)
	req.applyFitness(f)

	if err := s.repo.Save(ctx, p, f); err != nil {
		return Response{}, fmt.Errorf("save profile of user %d: %w", userID, err)
	}
	if err := s.users.MarkProfileCompleted(ctx, userID); err != nil {
		return Response{}, err
	}
	log.Infof("profile setup completed for user %d", userID)
	return s.Get(ctx, userID)
}

// Update merges the present fields into an existing profile.
func (s *Service) Update(ctx context.Context, userID uint, req Request) (Response, error) {
	if errs := req.nameErrors(false); len(errs) > 0 {
		return Response{}, apperror.Validation(errs)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return Response{}, err
	}
	p, f, err := s.load(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	if p == nil {
		return Response{}, notFound(userID)
	}
	req.applyProfile(p)
	if f == nil && req.touchesFitness() {
		f = &FitnessProfile{UserID: userID}
	}
	if f != nil {
		req.applyFitness(f)
	}

	if err := s.repo.Save(ctx, p, f); err != nil {
		return Response{}, fmt.Errorf("save profile of user %d: %w", userID, err)
	}
	return s.Get(ctx, userID)
}

// UploadImage stores a new profile picture and returns its URL. The previous
// picture, if any, is removed afterwards.
func (s *Service) UploadImage(ctx context.Context, userID uint, size int64, r io.Reader) (string, error) {
	if size <= 0 {
		return "", apperror.BadRequest("please select a file to upload")
	}
	if s.maxImage > 0 && size > s.maxImage {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file size must not exceed %d bytes", s.maxImage))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", apperror.BadRequest("could not read uploaded file")
	}
	head = head[:n]
	ext, ok := imageTypes[http.DetectContentType(head)]
	if !ok {
		return "", apperror.BadRequest("only image files are allowed")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}
	p, _, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	if p == nil {
		p = &Profile{UserID: userID, Preferences: defaultPreferences()}
	}

	obj, err := s.files.Save(ctx, imageDir, ext, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}
	previous := p.ProfilePictureURL
	p.ProfilePictureURL = obj.URL
	if err := s.repo.Save(ctx, p, nil); err != nil {
		_ = s.files.Delete(ctx, obj.URL)
		return "", fmt.Errorf("save profile of user %d: %w", userID, err)
	}
	if previous != "" {
		s.deleteFile(ctx, previous)
	}
	return obj.URL, nil
}

// DeleteImage clears the profile picture of a user.
func (s *Service) DeleteImage(ctx context.Context, userID uint) error {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return notFound(userID)
	}
	if err != nil {
		return err
	}
	if p.ProfilePictureURL == "" {
		return nil
	}
	previous := p.ProfilePictureURL
	p.ProfilePictureURL = ""
	if err := s.repo.Save(ctx, &p, nil); err != nil {
		return fmt.Errorf("save profile of user %d: %w", userID, err)
	}
	s.deleteFile(ctx, previous)
	return nil
}

// ReleaseUser removes both profiles of a user that is about to be deleted.
// The stored picture is removed by the returned func, once the deletion is
// committed.
func (s *Service) ReleaseUser(ctx context.Context, userID uint) (func(), error) {
	var picture string
	p, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == nil:
		picture = p.ProfilePictureURL
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if picture == "" {
		return nil, nil
	}
	return func() { s.deleteFile(ctx, picture) }, nil
}

func (s *Service) FitnessProfiles(ctx context.Context, f FitnessFilter, page pagination.Request) (pagination.Page[FitnessProfile], error) {
	return s.repo.FindFitness(ctx, f, page)
}

// deleteFile only logs failures; the profile change has already been saved.
func (s *Service) deleteFile(ctx context.Context, url string) {
	if err := s.files.Delete(ctx, url); err != nil {
		log.Warnf("delete profile image %s: %v", url, err)
	}
}

func notFound(userID uint) error {
	return apperror.Wrap(fiber.StatusNotFound, ErrNotFound, fmt.Sprintf("profile not found for user id: %d", userID))
}
