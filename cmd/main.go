package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/avolkov/offerhub/internal/aggregator"
	"github.com/avolkov/offerhub/internal/api"
	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/importer"
	"github.com/avolkov/offerhub/internal/logger"
	"github.com/avolkov/offerhub/internal/metrics"
	"github.com/avolkov/offerhub/internal/ratelimit"
	"github.com/avolkov/offerhub/internal/repositories"
	"github.com/avolkov/offerhub/internal/sources"
	"github.com/avolkov/offerhub/internal/translation"
	log "github.com/sirupsen/logrus"
)

const apiAddr = ":8081"

func buildCacheStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {

	if cfg.Backend == "redis" {
		return cache.NewRedisStore(ctx, cfg.RedisURL)
	}
	cleanup := time.Duration(cfg.CleanupIntervalMinutes) * time.Minute
	return cache.NewMemoryStore(cleanup), nil
}

func buildSources(cfg config.SourcesConfig, deps *sources.Deps) ([]sources.JobSource, []sources.OfferSource) {

	jobSources := []sources.JobSource{
		sources.NewAdzuna(cfg.Adzuna, deps),
		sources.NewJSearch(cfg.JSearch, deps),
		sources.NewGlassdoor(cfg.Glassdoor, deps),
		sources.NewActiveJobs(cfg.ActiveJobs, deps),
	}
	offerSources := []sources.OfferSource{
		sources.NewAwin(cfg.Awin, deps),
		sources.NewAdcell(cfg.Adcell, deps),
		sources.NewEbay(cfg.Ebay, deps),
	}
	return jobSources, offerSources
}

func budgetsFromConfig(cfg map[string]config.BudgetConfig) map[string]ratelimit.Budget {

	budgets := make(map[string]ratelimit.Budget, len(cfg))
	for provider, budget := range cfg {
		budgets[provider] = ratelimit.Budget{
			RequestsPerMinute: budget.RequestsPerMinute,
			RequestsPerHour:   budget.RequestsPerHour,
			RequestsPerDay:    budget.RequestsPerDay,
			BurstLimit:        budget.BurstLimit,
		}
	}
	return budgets
}

func runTranslation(cfg *config.Config, store cache.Store, dbContext *repositories.DbContext, bus EventBus.Bus) {

	client := translation.NewClient(cfg.Translation.BaseURL, store)
	client.SetMinuteRateLimit(cfg.Translation.MaxRequestsPerMinute)
	client.SetDayRateLimit(cfg.Translation.MaxRequestsPerDay)

	translations := repositories.NewTranslationsRepository(dbContext.DB)
	service := translation.NewService(client, translations, cfg.Translation)

	if err := service.SubscribeToEvents(bus); err != nil {
		log.Fatalf("can't subscribe translation service: %v", err)
	}
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	store, err := buildCacheStore(ctx, cfg.Cache)
	if err != nil {
		log.Fatalf("can't create cache store: %v", err)
	}

	limiter := ratelimit.NewLimiter(budgetsFromConfig(cfg.Sources.Budgets))
	deps := sources.NewDeps(limiter, store)
	jobSources, offerSources := buildSources(cfg.Sources, deps)

	agg := aggregator.New(jobSources, offerSources)
	router := api.NewRouter(agg)
	go func() {
		if err := router.Run(apiAddr); err != nil {
			log.Fatalf("api server stopped: %v", err)
		}
	}()

	bus := EventBus.New()
	runTranslation(cfg, store, dbContext, bus)

	reconciler := importer.NewReconciler(
		jobSources, offerSources,
		repositories.NewJobsRepository(dbContext.DB),
		repositories.NewOffersRepository(dbContext.DB),
		repositories.NewCompaniesRepository(dbContext.DB),
		repositories.NewCategoriesRepository(dbContext.DB),
		repositories.NewImportSourcesRepository(dbContext.DB),
		repositories.NewImportRunsRepository(dbContext.DB),
		bus,
	)

	scheduler, err := importer.NewScheduler(reconciler, cfg.Import)
	if err != nil {
		log.Fatalf("can't create import scheduler: %v", err)
	}
	defer scheduler.Stop()

	<-ctx.Done()

	log.Info("Shutting down services...")
	log.Info("Services stopped.")
}
