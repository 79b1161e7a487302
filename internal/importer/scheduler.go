package importer

import (
	"context"
	"time"

	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/sources"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const importRunTimeout = 10 * time.Minute

// Scheduler runs the configured import targets on a cron schedule. Targets
// run sequentially: the rate limiter already spaces provider calls, so
// parallel imports would only fight over the same budgets.
type Scheduler struct {
	reconciler *Reconciler
	targets    []config.ImportTarget
	cron       *cron.Cron
}

func NewScheduler(reconciler *Reconciler, cfg config.ImportConfig) (*Scheduler, error) {

	if cfg.Schedule == "" {
		return nil, errors.New("import schedule must not be empty")
	}

	s := &Scheduler{
		reconciler: reconciler,
		targets:    cfg.Targets,
		cron:       cron.New(),
	}

	_, err := s.cron.AddFunc(cfg.Schedule, s.runAll)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse import schedule")
	}

	s.cron.Start()
	log.Infof("import scheduler started with %d targets, schedule: %s", len(cfg.Targets), cfg.Schedule)
	return s, nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunAll triggers every configured target once, outside the cron schedule.
func (s *Scheduler) RunAll(ctx context.Context) {
	for _, target := range s.targets {
		s.runTarget(ctx, target)
	}
}

func (s *Scheduler) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), importRunTimeout)
	defer cancel()
	s.RunAll(ctx)
}

func (s *Scheduler) runTarget(ctx context.Context, target config.ImportTarget) {

	var summary *Summary
	var err error

	switch target.Kind {
	case "offers":
		summary, err = s.reconciler.ImportOffers(ctx, target.Source, sources.OfferParams{
			Query: target.Query,
			Limit: target.Limit,
		}, target.Limit)
	default:
		summary, err = s.reconciler.ImportJobs(ctx, target.Source, sources.JobParams{
			Query:   target.Query,
			Country: target.Country,
			Limit:   target.Limit,
		}, target.Limit)
	}

	if err != nil {
		log.Errorf("scheduled import of %s failed: %v", target.Source, err)
		return
	}
	log.Infof("scheduled import of %s finished: created=%d updated=%d failed=%d",
		target.Source, summary.Created, summary.Updated, summary.Failed)
}
