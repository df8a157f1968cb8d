package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/sheshape-backend/internal/apperror"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListActive(ctx context.Context, page pagination.Request) (pagination.Page[Product], error) {
	return s.repo.Find(ctx, Filter{ActiveOnly: true}, page)
}

// ListAll includes inactive products.
func (s *Service) ListAll(ctx context.Context, page pagination.Request) (pagination.Page[Product], error) {
	return s.repo.Find(ctx, Filter{}, page)
}

func (s *Service) ListByCategory(ctx context.Context, category string, page pagination.Request) (pagination.Page[Product], error) {
	return s.repo.Find(ctx, Filter{ActiveOnly: true, Category: category}, page)
}

func (s *Service) Search(ctx context.Context, keyword string, page pagination.Request) (pagination.Page[Product], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return pagination.Page[Product]{}, apperror.BadRequest("keyword is required")
	}
	return s.repo.Find(ctx, Filter{ActiveOnly: true, Keyword: keyword}, page)
}

func (s *Service) ListInStock(ctx context.Context) ([]Product, error) {
	return s.repo.FindInStock(ctx)
}

func (s *Service) GetByID(ctx context.Context, id uint) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, notFound(err, id)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Product, error) {
	p := req.toProduct()
	if errs := p.Check(); len(errs) > 0 {
		return Product{}, apperror.Validation(errs)
	}
	return s.repo.Create(ctx, p)
}

// Update merges the non-nil fields of req into the stored product.
func (s *Service) Update(ctx context.Context, id uint, req UpdateRequest) (Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	req.ApplyTo(&p)
	if errs := p.Check(); len(errs) > 0 {
		return Product{}, apperror.Validation(errs)
	}
	updated, err := s.repo.Save(ctx, p)
	if err != nil {
		return Product{}, notFound(err, id)
	}
	return updated, nil
}

func (s *Service) Activate(ctx context.Context, id uint) (Product, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) Deactivate(ctx context.Context, id uint) (Product, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id uint, active bool) (Product, error) {
	return s.Update(ctx, id, UpdateRequest{IsActive: &active})
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, id)
	}
	return nil
}

// UpdateInventory takes quantity units out of stock. It returns false, and
// changes nothing, when there is not enough stock.
func (s *Service) UpdateInventory(ctx context.Context, id uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, apperror.BadRequest("quantity must be greater than 0")
	}
	ok, err := s.repo.DecrementInventory(ctx, id, quantity)
	if err != nil {
		return false, notFound(err, id)
	}
	return ok, nil
}

// ResetProducts replaces all products with the given list (used for dev / seeding).
func (s *Service) ResetProducts(ctx context.Context, products []Product) error {
	for i := range products {
		if errs := products[i].Check(); len(errs) > 0 {
			return apperror.Validation(errs)
		}
	}
	return s.repo.Reset(ctx, products)
}

func notFound(err error, id uint) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.Wrap(fiber.StatusNotFound, err, fmt.Sprintf("product not found with id: %d", id))
	}
	return err
}
