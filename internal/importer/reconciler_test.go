package importer

import (
	"context"
	"testing"

	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	"github.com/avolkov/offerhub/internal/entities"
	"github.com/avolkov/offerhub/internal/repositories"
	"github.com/avolkov/offerhub/internal/sources"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobSource struct {
	name string
	jobs []models.ExternalJob
	err  error
}

func (f *fakeJobSource) Name() string { return f.name }

func (f *fakeJobSource) FetchJobs(_ context.Context, _ sources.JobParams) ([]models.ExternalJob, bool, error) {
	return f.jobs, false, f.err
}

type fakeOfferSource struct {
	name   string
	offers []models.ExternalOffer
}

func (f *fakeOfferSource) Name() string { return f.name }

func (f *fakeOfferSource) FetchOffers(_ context.Context, _ sources.OfferParams) ([]models.ExternalOffer, bool, error) {
	return f.offers, false, nil
}

func newTestDb(t *testing.T) *repositories.DbContext {
	dbContext, err := repositories.NewDbContext(config.DBConfig{Driver: "sqlite", ConnectionString: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())
	return dbContext
}

func newTestReconciler(t *testing.T, jobSrc sources.JobSource, offerSrc sources.OfferSource) (*Reconciler, *repositories.DbContext) {
	dbContext := newTestDb(t)

	var jobSources []sources.JobSource
	if jobSrc != nil {
		jobSources = append(jobSources, jobSrc)
	}
	var offerSources []sources.OfferSource
	if offerSrc != nil {
		offerSources = append(offerSources, offerSrc)
	}

	reconciler := NewReconciler(
		jobSources, offerSources,
		repositories.NewJobsRepository(dbContext.DB),
		repositories.NewOffersRepository(dbContext.DB),
		repositories.NewCompaniesRepository(dbContext.DB),
		repositories.NewCategoriesRepository(dbContext.DB),
		repositories.NewImportSourcesRepository(dbContext.DB),
		repositories.NewImportRunsRepository(dbContext.DB),
		nil,
	)
	return reconciler, dbContext
}

func externalJob(id, title, company string) models.ExternalJob {
	j := models.NewExternalJob("adzuna", id)
	j.Title = title
	j.Category = "Engineering"
	if company != "" {
		j.Company = &models.ExternalCompany{Name: company}
	}
	return j
}

func TestImportJobs_CreatesRecordsAndRun(t *testing.T) {

	src := &fakeJobSource{name: "adzuna", jobs: []models.ExternalJob{
		externalJob("1", "Go Developer", "ACME"),
		externalJob("2", "Data Engineer", "ACME"),
	}}
	reconciler, dbContext := newTestReconciler(t, src, nil)

	summary, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalFetched)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Failed)

	var jobCount int64
	dbContext.DB.Model(&entities.Job{}).Count(&jobCount)
	assert.EqualValues(t, 2, jobCount)

	// both jobs share one auto-created company and category
	var companyCount, categoryCount int64
	dbContext.DB.Model(&entities.Company{}).Count(&companyCount)
	dbContext.DB.Model(&entities.Category{}).Count(&categoryCount)
	assert.EqualValues(t, 1, companyCount)
	assert.EqualValues(t, 1, categoryCount)

	run, err := repositories.NewImportRunsRepository(dbContext.DB).GetByID(context.Background(), summary.ImportRunID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)

	source, err := repositories.NewImportSourcesRepository(dbContext.DB).FindByName(context.Background(), "adzuna")
	require.NoError(t, err)
	require.NotNil(t, source)
	assert.NotNil(t, source.LastImportAt)
}

func TestImportJobs_SecondImportUpdatesInsteadOfDuplicating(t *testing.T) {

	src := &fakeJobSource{name: "adzuna", jobs: []models.ExternalJob{
		externalJob("1", "Go Developer", "ACME"),
	}}
	reconciler, dbContext := newTestReconciler(t, src, nil)

	_, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err)

	var before entities.Job
	require.NoError(t, dbContext.DB.First(&before).Error)
	slugBefore := before.Slug

	src.jobs[0].Title = "Senior Go Developer"

	summary, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Updated)

	var jobCount int64
	dbContext.DB.Model(&entities.Job{}).Count(&jobCount)
	assert.EqualValues(t, 1, jobCount)

	var stored entities.Job
	require.NoError(t, dbContext.DB.First(&stored).Error)
	assert.Equal(t, "Senior Go Developer", stored.Title)
	assert.Equal(t, slugBefore, stored.Slug, "slug stays stable across updates")
}

func TestImportJobs_UpdateClearsDroppedFields(t *testing.T) {

	full := externalJob("1", "Go Developer", "ACME")
	salary := 65000.0
	full.SalaryMin = &salary
	full.Location = "Berlin"

	src := &fakeJobSource{name: "adzuna", jobs: []models.ExternalJob{full}}
	reconciler, dbContext := newTestReconciler(t, src, nil)

	_, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err)

	// upstream re-lists the posting without salary, location or company
	bare := externalJob("1", "Go Developer", "")
	src.jobs = []models.ExternalJob{bare}

	summary, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	var stored entities.Job
	require.NoError(t, dbContext.DB.First(&stored).Error)
	assert.Nil(t, stored.SalaryMin, "dropped salary must not stay stale")
	assert.Empty(t, stored.Location, "emptied location must be cleared")
	assert.Nil(t, stored.CompanyID)
	assert.NotEmpty(t, stored.Slug, "slug survives field clearing")
}

// failingJobs makes one item's insert fail so the isolation path is
// exercised against the real storage layer.
type failingJobs struct {
	*repositories.Jobs
	failTitle string
}

func (f *failingJobs) Create(ctx context.Context, job *entities.Job) error {
	if job.Title == f.failTitle {
		return errors.New("constraint violation")
	}
	return f.Jobs.Create(ctx, job)
}

func TestImportJobs_ItemFailureDoesNotFailRun(t *testing.T) {

	src := &fakeJobSource{name: "adzuna", jobs: []models.ExternalJob{
		externalJob("1", "Job One", "ACME"),
		externalJob("2", "Broken Job", "ACME"),
		externalJob("3", "Job Three", "ACME"),
	}}
	dbContext := newTestDb(t)

	reconciler := NewReconciler(
		[]sources.JobSource{src}, nil,
		&failingJobs{Jobs: repositories.NewJobsRepository(dbContext.DB), failTitle: "Broken Job"},
		repositories.NewOffersRepository(dbContext.DB),
		repositories.NewCompaniesRepository(dbContext.DB),
		repositories.NewCategoriesRepository(dbContext.DB),
		repositories.NewImportSourcesRepository(dbContext.DB),
		repositories.NewImportRunsRepository(dbContext.DB),
		nil,
	)

	summary, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err, "item-level failures must not fail the import")

	assert.Equal(t, 3, summary.TotalFetched)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Failed)

	var jobCount int64
	dbContext.DB.Model(&entities.Job{}).Count(&jobCount)
	assert.EqualValues(t, 2, jobCount)

	run, err := repositories.NewImportRunsRepository(dbContext.DB).GetByID(context.Background(), summary.ImportRunID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.FailedRecords)
}

func TestImportJobs_FetchFailureMarksRunFailed(t *testing.T) {

	src := &fakeJobSource{name: "adzuna", err: errors.New("upstream down")}
	reconciler, dbContext := newTestReconciler(t, src, nil)

	_, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	assert.Error(t, err)

	var run entities.ImportRun
	require.NoError(t, dbContext.DB.First(&run).Error)
	assert.Equal(t, entities.RunStatusFailed, run.Status)
	assert.Contains(t, run.ErrorLog, "upstream down")
	assert.NotNil(t, run.CompletedAt)
}

func TestImportJobs_UnknownSource(t *testing.T) {

	reconciler, _ := newTestReconciler(t, &fakeJobSource{name: "adzuna"}, nil)

	_, err := reconciler.ImportJobs(context.Background(), "nonexistent", sources.JobParams{Query: "go"}, 0)
	assert.Error(t, err)
}

func TestImportJobs_LimitTruncatesFetchedItems(t *testing.T) {

	src := &fakeJobSource{name: "adzuna", jobs: []models.ExternalJob{
		externalJob("1", "Job One", "ACME"),
		externalJob("2", "Job Two", "ACME"),
		externalJob("3", "Job Three", "ACME"),
	}}
	reconciler, _ := newTestReconciler(t, src, nil)

	summary, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalFetched)
	assert.Equal(t, 2, summary.Created)
}

func TestImportJobs_CompanyMatchIsCaseInsensitive(t *testing.T) {

	src := &fakeJobSource{name: "adzuna", jobs: []models.ExternalJob{
		externalJob("1", "Go Developer", "ACME GmbH"),
		externalJob("2", "Data Engineer", "acme gmbh"),
	}}
	reconciler, dbContext := newTestReconciler(t, src, nil)

	_, err := reconciler.ImportJobs(context.Background(), "adzuna", sources.JobParams{Query: "go"}, 0)
	require.NoError(t, err)

	var companyCount int64
	dbContext.DB.Model(&entities.Company{}).Count(&companyCount)
	assert.EqualValues(t, 1, companyCount)
}

func TestImportOffers_CreatesAndUpdates(t *testing.T) {

	offer := models.NewExternalOffer("awin", "p1")
	offer.Title = "Wireless Mouse"
	offer.Merchant = "TechStore"
	offer.Category = "Electronics"
	offer.Price = 19.99
	original := 29.99
	offer.OriginalPrice = &original

	src := &fakeOfferSource{name: "awin", offers: []models.ExternalOffer{offer}}
	reconciler, dbContext := newTestReconciler(t, nil, src)

	summary, err := reconciler.ImportOffers(context.Background(), "awin", sources.OfferParams{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	// price drops and the discount reference disappears upstream
	src.offers[0].Price = 14.99
	src.offers[0].OriginalPrice = nil

	summary, err = reconciler.ImportOffers(context.Background(), "awin", sources.OfferParams{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	var stored entities.Offer
	require.NoError(t, dbContext.DB.First(&stored).Error)
	assert.Equal(t, 14.99, stored.Price)
	assert.Nil(t, stored.OriginalPrice)

	var offerCount int64
	dbContext.DB.Model(&entities.Offer{}).Count(&offerCount)
	assert.EqualValues(t, 1, offerCount)
}
