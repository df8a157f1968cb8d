package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/sheshape-backend/internal/pagination"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrDisabled           = errors.New("user account is disabled")
)

type Repository interface {
	List(ctx context.Context, page pagination.Request) (pagination.Page[User], error)
	GetByID(ctx context.Context, id uint) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id uint) error
	// Transaction runs fn atomically. Repository calls made with the context
	// passed to fn take part in it.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
// It always orders by id.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID uint
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}

	var maxID uint
	for _, user := range seed {
		repo.users = append(repo.users, user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}
	sort.Slice(repo.users, func(i, j int) bool { return repo.users[i].ID < repo.users[j].ID })

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) List(_ context.Context, page pagination.Request) (pagination.Page[User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start, end := page.Window(len(r.users))
	content := make([]User, end-start)
	copy(content, r.users[start:end])
	return pagination.NewPage(content, page, int64(len(r.users))), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uint) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return User{}, ErrEmailExists
		}
	}

	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	r.users = append(r.users, user)
	return user, nil
}

func (r *InMemoryRepository) Update(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == user.ID {
			user.CreatedAt = r.users[i].CreatedAt
			user.UpdatedAt = time.Now().UTC()
			r.users[i] = user
			return user, nil
		}
	}

	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, user := range r.users {
		if user.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

// Transaction runs fn directly; the in-memory store has nothing to roll back.
func (r *InMemoryRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
