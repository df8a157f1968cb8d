package category

import (
	"context"

	"gorm.io/gorm"

	"github.com/wichananm65/sheshape-backend/internal/product"
)

// Repository provides access to categories.
type Repository interface {
	List(ctx context.Context, limit int) ([]CategoryItem, error)
}

// GormRepository derives categories from the product table.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// List returns categories of active products, biggest first, then by name.
func (r *GormRepository) List(ctx context.Context, limit int) ([]CategoryItem, error) {
	items := make([]CategoryItem, 0)
	err := r.db.WithContext(ctx).
		Model(&product.Product{}).
		Select("category AS name, COUNT(*) AS product_count").
		Where("is_active = ?", true).
		Group("category").
		Order("product_count DESC, category").
		Limit(limit).
		Scan(&items).Error
	return items, err
}
