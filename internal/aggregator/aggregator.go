package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avolkov/offerhub/internal/domain/models"
	"github.com/avolkov/offerhub/internal/logger"
	"github.com/avolkov/offerhub/internal/sources"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

type Meta struct {
	Sources   map[string]int
	Cached    bool
	Timestamp time.Time
}

type JobResult struct {
	Jobs       []models.ExternalJob
	Pagination Pagination
	Meta       Meta
}

type OfferResult struct {
	Offers     []models.ExternalOffer
	Pagination Pagination
	Meta       Meta
}

// Aggregator fans out a search to the configured adapters, merges their
// normalized items in adapter order, deduplicates and paginates. Adapter
// order is fixed at construction so the dedup winner is deterministic.
type Aggregator struct {
	jobSources   []sources.JobSource
	offerSources []sources.OfferSource
	validate     *validator.Validate
}

func New(jobSources []sources.JobSource, offerSources []sources.OfferSource) *Aggregator {
	return &Aggregator{
		jobSources:   jobSources,
		offerSources: offerSources,
		validate:     validator.New(),
	}
}

type outcome[T any] struct {
	items     []T
	fromCache bool
	failed    bool
}

// SearchJobs returns merged, deduplicated, paginated jobs across all
// selected sources. A single source failing contributes zero items; the
// only errors returned are caller parameter validation errors.
func (a *Aggregator) SearchJobs(ctx context.Context, params sources.JobParams) (*JobResult, error) {

	if params.Page == 0 {
		params.Page = defaultPage
	}
	if params.Limit == 0 {
		params.Limit = defaultLimit
	}
	if err := a.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	selected := selectByName(a.jobSources, params.Sources, func(s sources.JobSource) string { return s.Name() })
	if len(selected) == 0 {
		return nil, fmt.Errorf("invalid parameters: no matching sources in %v", params.Sources)
	}

	outcomes := fanOut(ctx, selected, func(ctx context.Context, src sources.JobSource) ([]models.ExternalJob, bool, error) {
		return src.FetchJobs(ctx, params)
	})

	var merged []models.ExternalJob
	counts := make(map[string]int, len(selected))
	cached := true
	for i, src := range selected {
		counts[src.Name()] = len(outcomes[i].items)
		merged = append(merged, outcomes[i].items...)
		if !outcomes[i].fromCache {
			cached = false
		}
	}

	deduped := dedupe(merged, models.ExternalJob.DedupKey)
	paged, pagination := paginate(deduped, params.Page, params.Limit)

	return &JobResult{
		Jobs:       paged,
		Pagination: pagination,
		Meta:       Meta{Sources: counts, Cached: cached, Timestamp: time.Now()},
	}, nil
}

func (a *Aggregator) SearchOffers(ctx context.Context, params sources.OfferParams) (*OfferResult, error) {

	if params.Page == 0 {
		params.Page = defaultPage
	}
	if params.Limit == 0 {
		params.Limit = defaultLimit
	}
	if err := a.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	selected := selectByName(a.offerSources, params.Sources, func(s sources.OfferSource) string { return s.Name() })
	if len(selected) == 0 {
		return nil, fmt.Errorf("invalid parameters: no matching sources in %v", params.Sources)
	}

	outcomes := fanOut(ctx, selected, func(ctx context.Context, src sources.OfferSource) ([]models.ExternalOffer, bool, error) {
		return src.FetchOffers(ctx, params)
	})

	var merged []models.ExternalOffer
	counts := make(map[string]int, len(selected))
	cached := true
	for i, src := range selected {
		counts[src.Name()] = len(outcomes[i].items)
		merged = append(merged, outcomes[i].items...)
		if !outcomes[i].fromCache {
			cached = false
		}
	}

	deduped := dedupe(merged, models.ExternalOffer.DedupKey)
	paged, pagination := paginate(deduped, params.Page, params.Limit)

	return &OfferResult{
		Offers:     paged,
		Pagination: pagination,
		Meta:       Meta{Sources: counts, Cached: cached, Timestamp: time.Now()},
	}, nil
}

// fanOut queries all sources concurrently and settles every branch: a
// failure or panic in one adapter never cancels the others. Results come
// back indexed by source so merging stays in configured order.
func fanOut[S any, T any](ctx context.Context, selected []S, fetch func(context.Context, S) ([]T, bool, error)) []outcome[T] {

	outcomes := make([]outcome[T], len(selected))

	var wg sync.WaitGroup
	for i, src := range selected {
		wg.Add(1)
		go func(i int, src S) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField(logger.ErrorTypeField, logger.ErrorTypeProviderApi).
						Errorf("source panicked during fetch: %v", r)
					outcomes[i] = outcome[T]{failed: true}
				}
			}()

			items, fromCache, err := fetch(ctx, src)
			if err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeProviderApi).
					Errorf("source fetch failed: %v", err)
				outcomes[i] = outcome[T]{failed: true}
				return
			}
			outcomes[i] = outcome[T]{items: items, fromCache: fromCache}
		}(i, src)
	}
	wg.Wait()

	return outcomes
}

// dedupe keeps the first occurrence per title+owner key: different
// providers frequently re-list the same posting or product with different
// external IDs.
func dedupe[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, item)
	}
	return result
}

// paginate slices the merged, deduplicated list. Page boundaries are only
// stable within a single cache window.
func paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return items[start:end], Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func selectByName[S any](all []S, names []string, name func(S) string) []S {
	if len(names) == 0 {
		return all
	}
	return lo.Filter(all, func(s S, _ int) bool {
		return lo.Contains(names, name(s))
	})
}
