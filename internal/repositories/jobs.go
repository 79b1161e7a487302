package repositories

import (
	"context"
	"errors"

	"github.com/avolkov/offerhub/internal/entities"
	"gorm.io/gorm"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// FindBySourceExternalID resolves a job by its natural key. Returns
// (nil, nil) when the remote record has no local counterpart yet.
func (repo *Jobs) FindBySourceExternalID(ctx context.Context, source, externalID string) (*entities.Job, error) {

	var job entities.Job
	err := repo.db.WithContext(ctx).
		First(&job, "source = ? AND external_id = ?", source, externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) Create(ctx context.Context, job *entities.Job) error {
	return repo.db.WithContext(ctx).Create(job).Error
}

// jobUpdateColumns is the explicit column list written on re-import. Zero
// values overwrite: a field the upstream record no longer carries must be
// cleared, not left stale. Slug and CreatedAt stay untouched.
var jobUpdateColumns = []string{
	"title", "location", "company_id", "category_id", "salary_min",
	"salary_max", "salary_currency", "salary_period", "employment_type",
	"short_description", "application_url", "published_at", "is_external",
}

func (repo *Jobs) Update(ctx context.Context, id uint, job entities.Job) error {
	return repo.db.WithContext(ctx).Model(&entities.Job{}).Where("id = ?", id).
		Select(jobUpdateColumns).Updates(job).Error
}
