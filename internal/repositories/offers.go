package repositories

import (
	"context"
	"errors"

	"github.com/avolkov/offerhub/internal/entities"
	"gorm.io/gorm"
)

type Offers struct {
	db *gorm.DB
}

func NewOffersRepository(db *gorm.DB) *Offers {
	return &Offers{db: db}
}

func (repo *Offers) FindBySourceExternalID(ctx context.Context, source, externalID string) (*entities.Offer, error) {

	var offer entities.Offer
	err := repo.db.WithContext(ctx).
		First(&offer, "source = ? AND external_id = ?", source, externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (repo *Offers) Create(ctx context.Context, offer *entities.Offer) error {
	return repo.db.WithContext(ctx).Create(offer).Error
}

// offerUpdateColumns mirrors jobUpdateColumns: explicit list so cleared
// upstream fields are written as their zero values.
var offerUpdateColumns = []string{
	"title", "merchant", "category_id", "price", "original_price",
	"discount_percentage", "image_url", "short_description", "tracking_url",
	"published_at", "is_external",
}

func (repo *Offers) Update(ctx context.Context, id uint, offer entities.Offer) error {
	return repo.db.WithContext(ctx).Model(&entities.Offer{}).Where("id = ?", id).
		Select(offerUpdateColumns).Updates(offer).Error
}
