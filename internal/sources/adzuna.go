package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

const adzunaName = "adzuna"
const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

// Adzuna fetches job listings from the Adzuna public API. When credentials
// are missing the adapter degrades to an empty contribution instead of
// failing the whole fan-out.
type Adzuna struct {
	cfg  config.AdzunaConfig
	deps *Deps
}

func NewAdzuna(cfg config.AdzunaConfig, deps *Deps) *Adzuna {
	if cfg.Country == "" {
		cfg.Country = "de"
	}
	return &Adzuna{cfg: cfg, deps: deps}
}

func (a *Adzuna) Name() string {
	return adzunaName
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	ContractTime string  `json:"contract_time"`
	Company      struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

func (a *Adzuna) FetchJobs(ctx context.Context, params JobParams) ([]models.ExternalJob, bool, error) {

	if a.cfg.AppID == "" || a.cfg.AppKey == "" {
		log.Warn("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping adzuna")
		return nil, false, nil
	}

	requestURL := a.buildURL(params)
	key := cache.Key(adzunaName, map[string]string{"url": requestURL})

	jobs, fromCache, err := cache.Wrap(ctx, a.deps.Cache, key, jobsCacheTTL, []string{"jobs", adzunaName},
		func(ctx context.Context) ([]models.ExternalJob, error) {
			var resp adzunaResponse
			err := a.deps.getJSON(ctx, adzunaName, "search", func(ctx context.Context) (*http.Request, error) {
				return http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
			}, &resp)
			if err != nil {
				return nil, err
			}
			return a.normalize(resp.Results), nil
		})

	if err != nil {
		return []models.ExternalJob{}, false, err
	}
	return jobs, fromCache, nil
}

func (a *Adzuna) buildURL(params JobParams) string {
	endpoint := fmt.Sprintf("%s/%s/search/%d", adzunaBaseURL, a.cfg.Country, params.Page)

	values := url.Values{}
	values.Set("app_id", a.cfg.AppID)
	values.Set("app_key", a.cfg.AppKey)
	values.Set("what", params.Query)
	values.Set("results_per_page", strconv.Itoa(params.Limit))
	values.Set("content-type", "application/json")
	values.Set("sort_by", "date")
	if params.Location != "" {
		values.Set("where", params.Location)
	}

	return endpoint + "?" + values.Encode()
}

func (a *Adzuna) normalize(results []adzunaResult) []models.ExternalJob {
	jobs := make([]models.ExternalJob, 0, len(results))
	for _, r := range results {
		if r.ID == "" || r.Title == "" {
			continue
		}

		job := models.NewExternalJob(adzunaName, r.ID)
		job.Title = r.Title
		job.Location = r.Location.DisplayName
		job.SalaryMin = floatPtr(r.SalaryMin)
		job.SalaryMax = floatPtr(r.SalaryMax)
		job.SalaryPeriod = models.SalaryYearly
		job.EmploymentType = r.ContractTime
		job.ShortDescription = r.Description
		job.ApplicationURL = r.RedirectURL
		job.PublishedAt = parseTime(time.RFC3339, r.Created)
		if r.Company.DisplayName != "" {
			job.Company = &models.ExternalCompany{Name: r.Company.DisplayName}
		}

		jobs = append(jobs, job)
	}
	return jobs
}
