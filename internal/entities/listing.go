package entities

import "time"

type Company struct {
	ID             uint `gorm:"primaryKey"`
	Name           string
	NormalizedName string `gorm:"index"`
	LogoURL        string
	IsVerified     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID             uint `gorm:"primaryKey"`
	Name           string
	NormalizedName string `gorm:"index"`
	Slug           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Job is the persisted listing. The (source, external_id) pair is the
// natural key that makes re-imports idempotent.
type Job struct {
	ID               uint   `gorm:"primaryKey"`
	Source           string `gorm:"index:idx_jobs_source_external,unique"`
	ExternalID       string `gorm:"index:idx_jobs_source_external,unique"`
	Title            string
	Slug             string
	Location         string
	CompanyID        *uint
	CategoryID       *uint
	SalaryMin        *float64
	SalaryMax        *float64
	SalaryCurrency   string
	SalaryPeriod     string
	EmploymentType   string
	ShortDescription string
	ApplicationURL   string
	PublishedAt      *time.Time
	IsExternal       bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Offer struct {
	ID                 uint   `gorm:"primaryKey"`
	Source             string `gorm:"index:idx_offers_source_external,unique"`
	ExternalID         string `gorm:"index:idx_offers_source_external,unique"`
	Title              string
	Slug               string
	Merchant           string
	CategoryID         *uint
	Price              float64
	OriginalPrice      *float64
	DiscountPercentage *float64
	ImageURL           string
	ShortDescription   string
	TrackingURL        string
	PublishedAt        *time.Time
	IsExternal         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
