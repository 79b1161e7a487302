package importer

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/avolkov/offerhub/internal/domain/models"
	"github.com/avolkov/offerhub/internal/entities"
	"github.com/avolkov/offerhub/internal/events"
	"github.com/avolkov/offerhub/internal/logger"
	"github.com/avolkov/offerhub/internal/metrics"
	"github.com/avolkov/offerhub/internal/repositories"
	"github.com/avolkov/offerhub/internal/sources"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Summary is what import callers get back; the full ImportRun row stays in
// storage under ImportRunID.
type Summary struct {
	ImportRunID  string
	TotalFetched int
	Created      int
	Updated      int
	Failed       int
}

type JobRepository interface {
	FindBySourceExternalID(ctx context.Context, source, externalID string) (*entities.Job, error)
	Create(ctx context.Context, job *entities.Job) error
	Update(ctx context.Context, id uint, job entities.Job) error
}

type OfferRepository interface {
	FindBySourceExternalID(ctx context.Context, source, externalID string) (*entities.Offer, error)
	Create(ctx context.Context, offer *entities.Offer) error
	Update(ctx context.Context, id uint, offer entities.Offer) error
}

// Reconciler consumes one source's items and reconciles them into storage:
// create-or-update by natural key, with per-item failure isolation. A bulk
// import is expected to be mostly successful, not all-or-nothing.
type Reconciler struct {
	jobSources   map[string]sources.JobSource
	offerSources map[string]sources.OfferSource

	jobs          JobRepository
	offers        OfferRepository
	companies     *repositories.Companies
	categories    *repositories.Categories
	importSources *repositories.ImportSources
	importRuns    *repositories.ImportRuns

	bus EventBus.Bus
}

func NewReconciler(
	jobSources []sources.JobSource,
	offerSources []sources.OfferSource,
	jobs JobRepository,
	offers OfferRepository,
	companies *repositories.Companies,
	categories *repositories.Categories,
	importSources *repositories.ImportSources,
	importRuns *repositories.ImportRuns,
	bus EventBus.Bus,
) *Reconciler {

	r := &Reconciler{
		jobSources:    make(map[string]sources.JobSource, len(jobSources)),
		offerSources:  make(map[string]sources.OfferSource, len(offerSources)),
		jobs:          jobs,
		offers:        offers,
		companies:     companies,
		categories:    categories,
		importSources: importSources,
		importRuns:    importRuns,
		bus:           bus,
	}
	for _, src := range jobSources {
		r.jobSources[src.Name()] = src
	}
	for _, src := range offerSources {
		r.offerSources[src.Name()] = src
	}
	return r
}

// ImportJobs fetches one source and reconciles every item independently.
// Only fetch-phase failures mark the run failed and propagate; item-level
// failures are counted and skipped.
func (r *Reconciler) ImportJobs(ctx context.Context, sourceName string, params sources.JobParams, limit int) (*Summary, error) {

	adapter, ok := r.jobSources[sourceName]
	if !ok {
		return nil, errors.Errorf("invalid parameters: unknown job source %q", sourceName)
	}

	source, run, err := r.startRun(ctx, sourceName, "jobs")
	if err != nil {
		return nil, err
	}

	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 100
	}

	items, _, err := adapter.FetchJobs(ctx, params)
	if err != nil {
		return nil, r.failRun(ctx, run, err)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	run.TotalRecords = len(items)

	var imported []events.ImportedItem
	for _, item := range items {
		created, upsertErr := r.upsertJob(ctx, item)
		if upsertErr != nil {
			run.FailedRecords++
			metrics.ImportedRecordsCounter.WithLabelValues(sourceName, "failed").Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to import job %s: %v", item.ID, upsertErr)
			continue
		}
		if created {
			run.CreatedRecords++
			metrics.ImportedRecordsCounter.WithLabelValues(sourceName, "created").Inc()
			imported = append(imported, events.ImportedItem{
				ContentID:   item.ID,
				ContentType: "job",
				Title:       item.Title,
			})
		} else {
			run.UpdatedRecords++
			metrics.ImportedRecordsCounter.WithLabelValues(sourceName, "updated").Inc()
		}
	}

	return r.completeRun(ctx, source, run, imported)
}

func (r *Reconciler) ImportOffers(ctx context.Context, sourceName string, params sources.OfferParams, limit int) (*Summary, error) {

	adapter, ok := r.offerSources[sourceName]
	if !ok {
		return nil, errors.Errorf("invalid parameters: unknown offer source %q", sourceName)
	}

	source, run, err := r.startRun(ctx, sourceName, "offers")
	if err != nil {
		return nil, err
	}

	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 100
	}

	items, _, err := adapter.FetchOffers(ctx, params)
	if err != nil {
		return nil, r.failRun(ctx, run, err)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	run.TotalRecords = len(items)

	var imported []events.ImportedItem
	for _, item := range items {
		created, upsertErr := r.upsertOffer(ctx, item)
		if upsertErr != nil {
			run.FailedRecords++
			metrics.ImportedRecordsCounter.WithLabelValues(sourceName, "failed").Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to import offer %s: %v", item.ID, upsertErr)
			continue
		}
		if created {
			run.CreatedRecords++
			metrics.ImportedRecordsCounter.WithLabelValues(sourceName, "created").Inc()
			imported = append(imported, events.ImportedItem{
				ContentID:   item.ID,
				ContentType: "offer",
				Title:       item.Title,
			})
		} else {
			run.UpdatedRecords++
			metrics.ImportedRecordsCounter.WithLabelValues(sourceName, "updated").Inc()
		}
	}

	return r.completeRun(ctx, source, run, imported)
}

// startRun resolves or creates the source registry row and opens a running
// ImportRun.
func (r *Reconciler) startRun(ctx context.Context, sourceName, kind string) (*entities.ImportSource, *entities.ImportRun, error) {

	source, err := r.importSources.FindByName(ctx, sourceName)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to resolve import source")
	}
	if source == nil {
		source = &entities.ImportSource{Name: sourceName, Kind: kind, IsActive: true}
		if err = r.importSources.Create(ctx, source); err != nil {
			return nil, nil, errors.Wrap(err, "failed to create import source")
		}
	}

	run := &entities.ImportRun{
		ID:        uuid.NewString(),
		SourceID:  source.ID,
		Status:    entities.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err = r.importRuns.Create(ctx, run); err != nil {
		return nil, nil, errors.Wrap(err, "failed to create import run")
	}

	log.Infof("import run %s started for source %s", run.ID, sourceName)
	return source, run, nil
}

func (r *Reconciler) failRun(ctx context.Context, run *entities.ImportRun, cause error) error {
	now := time.Now()
	run.Status = entities.RunStatusFailed
	run.ErrorLog = cause.Error()
	run.CompletedAt = &now

	if err := r.importRuns.Update(ctx, run); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to mark import run %s as failed: %v", run.ID, err)
	}
	return errors.Wrap(cause, "import fetch phase failed")
}

func (r *Reconciler) completeRun(ctx context.Context, source *entities.ImportSource,
	run *entities.ImportRun, imported []events.ImportedItem) (*Summary, error) {

	now := time.Now()
	run.Status = entities.RunStatusCompleted
	run.CompletedAt = &now

	if err := r.importRuns.Update(ctx, run); err != nil {
		return nil, errors.Wrap(err, "failed to update import run")
	}
	if err := r.importSources.UpdateLastImport(ctx, source.ID, now); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to update last import time for %s: %v", source.Name, err)
	}

	log.Infof("import run %s completed: total=%d created=%d updated=%d failed=%d",
		run.ID, run.TotalRecords, run.CreatedRecords, run.UpdatedRecords, run.FailedRecords)

	if r.bus != nil {
		r.bus.Publish(events.ImportCompletedTopic, events.ImportCompleted{
			RunID:   run.ID,
			Source:  source.Name,
			Kind:    source.Kind,
			Created: run.CreatedRecords,
			Updated: run.UpdatedRecords,
			Items:   imported,
		})
	}

	return &Summary{
		ImportRunID:  run.ID,
		TotalFetched: run.TotalRecords,
		Created:      run.CreatedRecords,
		Updated:      run.UpdatedRecords,
		Failed:       run.FailedRecords,
	}, nil
}

func (r *Reconciler) upsertJob(ctx context.Context, ext models.ExternalJob) (bool, error) {

	companyID, err := r.resolveCompany(ctx, ext.Company)
	if err != nil {
		return false, err
	}

	categoryID, err := r.resolveCategory(ctx, ext.Category)
	if err != nil {
		return false, err
	}

	existing, err := r.jobs.FindBySourceExternalID(ctx, ext.Source, ext.ExternalID)
	if err != nil {
		return false, err
	}

	row := jobRowFromExternal(ext, companyID, categoryID)
	if existing != nil {
		return false, r.jobs.Update(ctx, existing.ID, row)
	}

	row.Slug = makeSlug(ext.Title)
	return true, r.jobs.Create(ctx, &row)
}

func (r *Reconciler) upsertOffer(ctx context.Context, ext models.ExternalOffer) (bool, error) {

	categoryID, err := r.resolveCategory(ctx, ext.Category)
	if err != nil {
		return false, err
	}

	existing, err := r.offers.FindBySourceExternalID(ctx, ext.Source, ext.ExternalID)
	if err != nil {
		return false, err
	}

	row := offerRowFromExternal(ext, categoryID)
	if existing != nil {
		return false, r.offers.Update(ctx, existing.ID, row)
	}

	row.Slug = makeSlug(ext.Title)
	return true, r.offers.Create(ctx, &row)
}

// resolveCompany finds the company by case-insensitive name or creates it
// on first encounter.
func (r *Reconciler) resolveCompany(ctx context.Context, external *models.ExternalCompany) (*uint, error) {
	if external == nil || external.Name == "" {
		return nil, nil
	}

	company, err := r.companies.FindByName(ctx, external.Name)
	if err != nil {
		return nil, err
	}
	if company == nil {
		company = &entities.Company{
			Name:       external.Name,
			LogoURL:    external.LogoURL,
			IsVerified: external.IsVerified,
		}
		if err = r.companies.Create(ctx, company); err != nil {
			return nil, err
		}
	}
	return &company.ID, nil
}

// resolveCategory behaves the same for job and offer imports: created on
// miss in both paths.
func (r *Reconciler) resolveCategory(ctx context.Context, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}

	category, err := r.categories.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		category = &entities.Category{Name: name}
		if err = r.categories.Create(ctx, category); err != nil {
			return nil, err
		}
	}
	return &category.ID, nil
}
