package product

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
	ErrNotFound = errors.New("product not found")
)

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	ActiveOnly bool
	Category   string
	// Keyword is matched case-insensitively against the product name.
	Keyword string
}

type Repository interface {
	Find(ctx context.Context, f Filter, page pagination.Request) (pagination.Page[Product], error)
	// FindInStock returns active products with inventory above zero.
	FindInStock(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id uint) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Save(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id uint) error
	// DecrementInventory removes qty units when enough stock exists and
	// reports whether it did.
	DecrementInventory(ctx context.Context, id uint, qty int) (bool, error)
	// Reset replaces all products with the provided list (used for dev / seeding)
	Reset(ctx context.Context, products []Product) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// seeding local data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  uint
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
	}

	var maxID uint
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (f Filter) matches(p Product) bool {
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Keyword)) {
		return false
	}
	return true
}

func (r *InMemoryRepository) Find(_ context.Context, f Filter, page pagination.Request) (pagination.Page[Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Product, 0)
	for _, p := range r.storage {
		if f.matches(p) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, page.Sort, page.Desc)

	start, end := page.Window(len(matched))
	return pagination.NewPage(matched[start:end], page, int64(len(matched))), nil
}

func sortProducts(ps []Product, column string, desc bool) {
	less := func(a, b Product) bool { return a.ID < b.ID }
	switch column {
	case "name":
		less = func(a, b Product) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case "inventory_count":
		less = func(a, b Product) bool { return a.InventoryCount < b.InventoryCount }
	case "created_at":
		less = func(a, b Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if desc {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}

func (r *InMemoryRepository) FindInStock(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if p.IsActive && p.InventoryCount > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uint) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Save(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == p.ID {
			p.CreatedAt = r.storage[i].CreatedAt
			p.UpdatedAt = time.Now().UTC()
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) DecrementInventory(_ context.Context, id uint, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		if r.storage[i].InventoryCount < qty {
			return false, nil
		}
		r.storage[i].InventoryCount -= qty
		r.storage[i].UpdatedAt = time.Now().UTC()
		return true, nil
	}
	return false, ErrNotFound
}

// Reset replaces the whole in-memory storage with the provided products.
func (r *InMemoryRepository) Reset(_ context.Context, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = make([]Product, 0, len(products))
	var maxID uint
	for _, p := range products {
		if p.ID == 0 {
			p.ID = r.nextID
			r.nextID++
		}
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	if maxID >= r.nextID {
		r.nextID = maxID + 1
	}
	return nil
}
