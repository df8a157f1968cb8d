package product

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wichananm65/sheshape-backend/internal/pagination"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Keyword != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Keyword)) + "%"
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
	return db
}

func (r *GormRepository) Find(ctx context.Context, f Filter, page pagination.Request) (pagination.Page[Product], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return pagination.Page[Product]{}, err
	}

	if page.Sort == "" {
		page.Sort = "id"
	}
	products := make([]Product, 0)
	if err := r.db.WithContext(ctx).Scopes(f.scope, page.Scope).Find(&products).Error; err != nil {
		return pagination.Page[Product]{}, err
	}
	return pagination.NewPage(products, page, total), nil
}

func (r *GormRepository) FindInStock(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND inventory_count > ?", true, 0).
		Order("id").
		Find(&products).Error
	return products, err
}

func (r *GormRepository) GetByID(ctx context.Context, id uint) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *GormRepository) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = 0
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return Product{}, err
	}
	return p, nil
}

// Save writes every column of p, including zero values such as an inactive
// flag or an empty description.
func (r *GormRepository) Save(ctx context.Context, p Product) (Product, error) {
	res := r.db.WithContext(ctx).Model(&Product{ID: p.ID}).Select("*").Omit("id", "created_at").Updates(&p)
	if res.Error != nil {
		return Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *GormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementInventory runs the stock check and the guarded update in one
// transaction. The WHERE clause keeps the count from going negative even if
// another request decremented in between.
func (r *GormRepository) DecrementInventory(ctx context.Context, id uint, qty int) (bool, error) {
	decremented := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Product
		if err := tx.Select("id", "inventory_count").First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.InventoryCount < qty {
			return nil
		}

		res := tx.Model(&Product{}).
			Where("id = ? AND inventory_count >= ?", id, qty).
			Update("inventory_count", gorm.Expr("inventory_count - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		decremented = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return decremented, nil
}

// Reset deletes all products and inserts the provided list in a single transaction.
func (r *GormRepository) Reset(ctx context.Context, products []Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Product{}).Error; err != nil {
			return err
		}
		for _, p := range products {
			p.ID = 0
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
