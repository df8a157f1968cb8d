package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
)

// DeleteHook runs inside the transaction that removes a user row so dependent
// rows go with it. The returned func, when non-nil, runs after the commit and
// is where files or other non-transactional resources are released.
type DeleteHook func(ctx context.Context, userID uint) (func(), error)

type Service struct {
	repo        Repository
	deleteHooks []DeleteHook
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// OnDelete registers a hook executed by Delete, in registration order.
func (s *Service) OnDelete(hook DeleteHook) {
	s.deleteHooks = append(s.deleteHooks, hook)
}

func (s *Service) List(ctx context.Context, page pagination.Request) (pagination.Page[User], error) {
	return s.repo.List(ctx, page)
}

func (s *Service) GetByID(ctx context.Context, id uint) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, notFound(err, id)
	}
	return u, nil
}

// Register creates a USER account with a hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	return s.create(ctx, email, password, RoleUser)
}

func (s *Service) create(ctx context.Context, email, password string, role Role) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, apperror.Wrap(fiber.StatusConflict, ErrEmailExists, "email already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	created, err := s.repo.Create(ctx, User{
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	})
	if errors.Is(err, ErrEmailExists) {
		return User{}, apperror.Wrap(fiber.StatusConflict, err, "email already exists")
	}
	return created, err
}

// Authenticate checks the credentials of an active account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, apperror.Wrap(fiber.StatusUnauthorized, ErrInvalidCredentials, "invalid email or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, apperror.Wrap(fiber.StatusUnauthorized, ErrInvalidCredentials, "invalid email or password")
	}
	if !user.IsActive {
		return User{}, apperror.Wrap(fiber.StatusForbidden, ErrDisabled, "user account is disabled")
	}

	return user, nil
}

func (s *Service) SetActive(ctx context.Context, id uint, active bool) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.IsActive = active
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, notFound(err, id)
	}
	return updated, nil
}

// MarkProfileCompleted flags the user once the profile setup has run.
func (s *Service) MarkProfileCompleted(ctx context.Context, id uint) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.ProfileCompleted {
		return nil
	}
	u.ProfileCompleted = true
	_, err = s.repo.Update(ctx, u)
	return err
}

// Delete runs the delete hooks and removes the user in one transaction. The
// after-commit funcs of the hooks run only once the removal is committed.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	var afterCommit []func()
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		for _, hook := range s.deleteHooks {
			done, err := hook(ctx, id)
			if err != nil {
				return fmt.Errorf("release user %d: %w", id, err)
			}
			if done != nil {
				afterCommit = append(afterCommit, done)
			}
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return notFound(err, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, done := range afterCommit {
		done()
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if _, err := s.repo.GetByEmail(ctx, strings.ToLower(email)); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	u, err := s.create(ctx, email, password, RoleAdmin)
	if err != nil {
		return err
	}
	log.Infof("created admin account %s (id=%d)", u.Email, u.ID)
	return nil
}

func notFound(err error, id uint) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.Wrap(fiber.StatusNotFound, err, fmt.Sprintf("user not found with id: %d", id))
	}
	return err
}
