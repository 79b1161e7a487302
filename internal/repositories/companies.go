package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/avolkov/offerhub/internal/entities"
	"gorm.io/gorm"
)

type Companies struct {
	db *gorm.DB
}

func NewCompaniesRepository(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

// FindByName looks a company up case-insensitively. Returns (nil, nil)
// when no row matches.
func (repo *Companies) FindByName(ctx context.Context, name string) (*entities.Company, error) {

	var company entities.Company
	err := repo.db.WithContext(ctx).
		First(&company, "normalized_name = ?", NormalizeName(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (repo *Companies) Create(ctx context.Context, company *entities.Company) error {
	company.NormalizedName = NormalizeName(company.Name)
	return repo.db.WithContext(ctx).Create(company).Error
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
