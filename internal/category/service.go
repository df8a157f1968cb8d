package category

import "context"

const DefaultLimit = 100

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns up to `limit` category items.
func (s *Service) List(ctx context.Context, limit int) ([]CategoryItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.repo.List(ctx, limit)
}
