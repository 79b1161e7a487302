package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/avolkov/offerhub/internal/entities"
	"gorm.io/gorm"
)

type ImportSources struct {
	db *gorm.DB
}

func NewImportSourcesRepository(db *gorm.DB) *ImportSources {
	return &ImportSources{db: db}
}

func (repo *ImportSources) FindByName(ctx context.Context, name string) (*entities.ImportSource, error) {

	var source entities.ImportSource
	err := repo.db.WithContext(ctx).First(&source, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (repo *ImportSources) Create(ctx context.Context, source *entities.ImportSource) error {
	return repo.db.WithContext(ctx).Create(source).Error
}

func (repo *ImportSources) UpdateLastImport(ctx context.Context, id uint, at time.Time) error {
	return repo.db.WithContext(ctx).Model(&entities.ImportSource{}).Where("id = ?", id).
		Update("last_import_at", at).Error
}
