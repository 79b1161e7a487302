package repositories

import (
	"context"
	"errors"

	"github.com/avolkov/offerhub/internal/entities"
	"gorm.io/gorm"
)

type Translations struct {
	db *gorm.DB
}

func NewTranslationsRepository(db *gorm.DB) *Translations {
	return &Translations{db: db}
}

func (repo *Translations) Find(ctx context.Context, contentID, language, contentType string) (*entities.Translation, error) {

	var translation entities.Translation
	err := repo.db.WithContext(ctx).
		First(&translation, "content_id = ? AND language = ? AND content_type = ?",
			contentID, language, contentType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &translation, nil
}

func (repo *Translations) Save(ctx context.Context, translation *entities.Translation) error {
	return repo.db.WithContext(ctx).Create(translation).Error
}
