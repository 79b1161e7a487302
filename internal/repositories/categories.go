package repositories

import (
	"context"
	"errors"

	"github.com/avolkov/offerhub/internal/entities"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Categories struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *Categories {
	return &Categories{db: db}
}

func (repo *Categories) FindByName(ctx context.Context, name string) (*entities.Category, error) {

	var category entities.Category
	err := repo.db.WithContext(ctx).
		First(&category, "normalized_name = ?", NormalizeName(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (repo *Categories) Create(ctx context.Context, category *entities.Category) error {
	category.NormalizedName = NormalizeName(category.Name)
	if category.Slug == "" {
		category.Slug = slug.Make(category.Name)
	}
	return repo.db.WithContext(ctx).Create(category).Error
}
