package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wichananm65/sheshape-backend/internal/database"
	"github.com/wichananm65/sheshape-backend/internal/pagination"
)

var ErrNotFound = errors.New("profile not found")

// FitnessFilter selects fitness profiles. Zero values match everything.
type FitnessFilter struct {
	Level        FitnessLevel
	Goal         FitnessGoal
	MinFrequency int
}

type Repository interface {
	GetProfile(ctx context.Context, userID uint) (Profile, error)
	GetFitness(ctx context.Context, userID uint) (FitnessProfile, error)
	// Save writes the profile and, when non-nil, the fitness profile in one
	// transaction. New rows get their ids filled in.
	Save(ctx context.Context, p *Profile, f *FitnessProfile) error
	// DeleteByUserID removes both profiles of a user. Missing rows are not an error.
	DeleteByUserID(ctx context.Context, userID uint) error
	FindFitness(ctx context.Context, f FitnessFilter, page pagination.Request) (pagination.Page[FitnessProfile], error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetProfile(ctx context.Context, userID uint) (Profile, error) {
	var p Profile
	err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *GormRepository) GetFitness(ctx context.Context, userID uint) (FitnessProfile, error) {
	var f FitnessProfile
	err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FitnessProfile{}, ErrNotFound
	}
	return f, err
}

func (r *GormRepository) Save(ctx context.Context, p *Profile, f *FitnessProfile) error {
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		if f == nil {
			return nil
		}
		return tx.Omit(clause.Associations).Save(f).Error
	})
}

func (r *GormRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&FitnessProfile{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&Profile{}).Error
	})
}

func (f FitnessFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Level != "" {
		db = db.Where("fitness_level = ?", f.Level)
	}
	if f.Goal != "" {
		db = db.Where("primary_goal = ?", f.Goal)
	}
	if f.MinFrequency > 0 {
		db = db.Where("workout_frequency_per_week >= ?", f.MinFrequency)
	}
	return db
}

func (r *GormRepository) FindFitness(ctx context.Context, f FitnessFilter, page pagination.Request) (pagination.Page[FitnessProfile], error) {
	var total int64
	if err := database.Conn(ctx, r.db).Model(&FitnessProfile{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return pagination.Page[FitnessProfile]{}, err
	}
	if page.Sort == "" {
		page.Sort = "id"
	}
	out := make([]FitnessProfile, 0)
	if err := database.Conn(ctx, r.db).Scopes(f.scope, page.Scope).Find(&out).Error; err != nil {
		return pagination.Page[FitnessProfile]{}, err
	}
	return pagination.NewPage(out, page, total), nil
}
