package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wichananm65/sheshape-backend/internal/database"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, page pagination.Request) (pagination.Page[User], error) {
	var total int64
	if err := database.Conn(ctx, r.db).Model(&User{}).Count(&total).Error; err != nil {
		return pagination.Page[User]{}, err
	}

	users := make([]User, 0)
	if page.Sort == "" {
		page.Sort = "id"
	}
	if err := database.Conn(ctx, r.db).Scopes(page.Scope).Find(&users).Error; err != nil {
		return pagination.Page[User]{}, err
	}
	return pagination.NewPage(users, page, total), nil
}

func (r *GormRepository) GetByID(ctx context.Context, id uint) (User, error) {
	var u User
	err := database.Conn(ctx, r.db).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *GormRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := database.Conn(ctx, r.db).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *GormRepository) Create(ctx context.Context, user User) (User, error) {
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&User{}).Where("LOWER(email) = ?", strings.ToLower(user.Email)).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailExists
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *GormRepository) Update(ctx context.Context, user User) (User, error) {
	res := database.Conn(ctx, r.db).Model(&User{ID: user.ID}).Select("*").Omit("id", "created_at").Updates(&user)
	if res.Error != nil {
		return User{}, res.Error
	}
	if res.RowsAffected == 0 {
		return User{}, ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *GormRepository) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Transaction runs fn in one database transaction carried by its context.
func (r *GormRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.InTx(ctx, r.db, fn)
}
