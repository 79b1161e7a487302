package repositories

import (
	"context"

	"github.com/avolkov/offerhub/internal/entities"
	"gorm.io/gorm"
)

type ImportRuns struct {
	db *gorm.DB
}

func NewImportRunsRepository(db *gorm.DB) *ImportRuns {
	return &ImportRuns{db: db}
}

func (repo *ImportRuns) Create(ctx context.Context, run *entities.ImportRun) error {
	return repo.db.WithContext(ctx).Create(run).Error
}

func (repo *ImportRuns) Update(ctx context.Context, run *entities.ImportRun) error {
	return repo.db.WithContext(ctx).Save(run).Error
}

func (repo *ImportRuns) GetByID(ctx context.Context, id string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	if err := repo.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
