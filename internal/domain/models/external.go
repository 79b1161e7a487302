package models

import (
	"strings"
	"time"
)

type SalaryPeriod string

const (
	SalaryHourly  SalaryPeriod = "hourly"
	SalaryMonthly SalaryPeriod = "monthly"
	SalaryYearly  SalaryPeriod = "yearly"
)

type ExternalCompany struct {
	Name       string
	LogoURL    string
	IsVerified bool
}

// ExternalJob is the canonical job representation produced by source
// adapters. It is transient: only the import reconciler maps it into
// persisted rows.
type ExternalJob struct {
	ID               string
	ExternalID       string
	Title            string
	Location         string
	Company          *ExternalCompany
	Category         string
	SalaryMin        *float64
	SalaryMax        *float64
	SalaryCurrency   string
	SalaryPeriod     SalaryPeriod
	EmploymentType   string
	ShortDescription string
	PublishedAt      *time.Time
	ApplicationURL   string
	Source           string
	IsExternal       bool
}

// ExternalOffer is the canonical deal/affiliate-product representation.
type ExternalOffer struct {
	ID                 string
	ExternalID         string
	Title              string
	Merchant           string
	Category           string
	Price              float64
	OriginalPrice      *float64
	DiscountPercentage *float64
	ImageURL           string
	ShortDescription   string
	PublishedAt        *time.Time
	TrackingURL        string
	Source             string
	IsExternal         bool
}

// ExternalItemID derives the stable canonical id. It must stay
// deterministic for a given (source, externalID) pair: dedup and idempotent
// re-import both rely on it.
func ExternalItemID(source, externalID string) string {
	return source + ":" + externalID
}

func NewExternalJob(source, externalID string) ExternalJob {
	return ExternalJob{
		ID:         ExternalItemID(source, externalID),
		ExternalID: externalID,
		Source:     source,
		IsExternal: true,
	}
}

func NewExternalOffer(source, externalID string) ExternalOffer {
	return ExternalOffer{
		ID:         ExternalItemID(source, externalID),
		ExternalID: externalID,
		Source:     source,
		IsExternal: true,
	}
}

func (j ExternalJob) CompanyName() string {
	if j.Company == nil {
		return ""
	}
	return j.Company.Name
}

// DedupKey collapses re-listings of the same posting across providers.
func (j ExternalJob) DedupKey() string {
	return dedupKey(j.Title, j.CompanyName())
}

func (o ExternalOffer) DedupKey() string {
	return dedupKey(o.Title, o.Merchant)
}

func dedupKey(title, owner string) string {
	return strings.TrimSpace(strings.ToLower(title)) + "::" + strings.TrimSpace(strings.ToLower(owner))
}
