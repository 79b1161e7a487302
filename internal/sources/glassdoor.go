package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

const glassdoorName = "glassdoor"
const glassdoorDefaultHost = "real-time-glassdoor-data.p.rapidapi.com"

// Glassdoor pulls listings from a RapidAPI-hosted Glassdoor mirror. Salary
// arrives as a nested JSON blob and is parsed defensively.
type Glassdoor struct {
	cfg  config.RapidAPIConfig
	deps *Deps
}

func NewGlassdoor(cfg config.RapidAPIConfig, deps *Deps) *Glassdoor {
	if cfg.Host == "" {
		cfg.Host = glassdoorDefaultHost
	}
	return &Glassdoor{cfg: cfg, deps: deps}
}

func (g *Glassdoor) Name() string {
	return glassdoorName
}

type glassdoorResponse struct {
	Data struct {
		Jobs []glassdoorJob `json:"jobs"`
	} `json:"data"`
}

type glassdoorJob struct {
	ID          json.Number     `json:"job_id"`
	Title       string          `json:"job_title"`
	Company     string          `json:"company_name"`
	CompanyLogo string          `json:"company_logo"`
	Location    string          `json:"location"`
	Salary      json.RawMessage `json:"salary"`
	ListingDate string          `json:"listing_date"`
	URL         string          `json:"job_link"`
	Overview    string          `json:"job_overview"`
}

func (g *Glassdoor) FetchJobs(ctx context.Context, params JobParams) ([]models.ExternalJob, bool, error) {

	if g.cfg.APIKey == "" {
		log.Warn("GLASSDOOR_API_KEY not set, skipping glassdoor")
		return nil, false, nil
	}

	values := url.Values{}
	values.Set("query", params.Query)
	values.Set("page", strconv.Itoa(params.Page))
	if params.Location != "" {
		values.Set("location", params.Location)
	}
	requestURL := "https://" + g.cfg.Host + "/jobs-search?" + values.Encode()

	key := cache.Key(glassdoorName, map[string]string{"url": requestURL})

	jobs, fromCache, err := cache.Wrap(ctx, g.deps.Cache, key, jobsCacheTTL, []string{"jobs", glassdoorName},
		func(ctx context.Context) ([]models.ExternalJob, error) {
			var resp glassdoorResponse
			err := g.deps.getJSON(ctx, glassdoorName, "search", func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("X-RapidAPI-Key", g.cfg.APIKey)
				req.Header.Set("X-RapidAPI-Host", g.cfg.Host)
				return req, nil
			}, &resp)
			if err != nil {
				return nil, err
			}
			return g.normalize(resp.Data.Jobs), nil
		})

	if err != nil {
		return []models.ExternalJob{}, false, err
	}
	return jobs, fromCache, nil
}

func (g *Glassdoor) normalize(data []glassdoorJob) []models.ExternalJob {
	jobs := make([]models.ExternalJob, 0, len(data))
	for _, item := range data {
		if item.ID.String() == "" || item.Title == "" {
			continue
		}

		job := models.NewExternalJob(glassdoorName, item.ID.String())
		job.Title = item.Title
		job.Location = item.Location
		job.ShortDescription = truncate(item.Overview, 500)
		job.ApplicationURL = item.URL
		job.PublishedAt = parseTime(time.RFC3339, item.ListingDate)
		if item.Company != "" {
			job.Company = &models.ExternalCompany{
				Name:    item.Company,
				LogoURL: item.CompanyLogo,
			}
		}

		if salary := models.ParseSalaryJSON(item.Salary); salary != nil {
			job.SalaryMin = salary.Min
			job.SalaryMax = salary.Max
			job.SalaryCurrency = salary.Currency
			job.SalaryPeriod = salary.Period
		}

		jobs = append(jobs, job)
	}
	return jobs
}
