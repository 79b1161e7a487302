package importer

import (
	"strconv"
	"time"

	"github.com/avolkov/offerhub/internal/domain/models"
	"github.com/avolkov/offerhub/internal/entities"
	"github.com/gosimple/slug"
)

// jobRowFromExternal is the explicit allow-list mapping from the canonical
// transient shape onto the persisted schema. Fields the destination does
// not store (company name, category name) are resolved to foreign keys by
// the reconciler and never written as text.
func jobRowFromExternal(ext models.ExternalJob, companyID, categoryID *uint) entities.Job {
	return entities.Job{
		Source:           ext.Source,
		ExternalID:       ext.ExternalID,
		Title:            ext.Title,
		Location:         ext.Location,
		CompanyID:        companyID,
		CategoryID:       categoryID,
		SalaryMin:        ext.SalaryMin,
		SalaryMax:        ext.SalaryMax,
		SalaryCurrency:   ext.SalaryCurrency,
		SalaryPeriod:     string(ext.SalaryPeriod),
		EmploymentType:   ext.EmploymentType,
		ShortDescription: ext.ShortDescription,
		ApplicationURL:   ext.ApplicationURL,
		PublishedAt:      ext.PublishedAt,
		IsExternal:       ext.IsExternal,
	}
}

func offerRowFromExternal(ext models.ExternalOffer, categoryID *uint) entities.Offer {
	return entities.Offer{
		Source:             ext.Source,
		ExternalID:         ext.ExternalID,
		Title:              ext.Title,
		Merchant:           ext.Merchant,
		CategoryID:         categoryID,
		Price:              ext.Price,
		OriginalPrice:      ext.OriginalPrice,
		DiscountPercentage: ext.DiscountPercentage,
		ImageURL:           ext.ImageURL,
		ShortDescription:   ext.ShortDescription,
		TrackingURL:        ext.TrackingURL,
		PublishedAt:        ext.PublishedAt,
		IsExternal:         ext.IsExternal,
	}
}

// makeSlug suffixes a timestamp so imported titles never need a
// uniqueness probe loop.
func makeSlug(title string) string {
	return slug.Make(title) + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
