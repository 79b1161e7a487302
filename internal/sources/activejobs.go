package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

const activeJobsName = "activejobs"
const activeJobsDefaultHost = "active-jobs-db.p.rapidapi.com"

// ActiveJobs pulls from the Active Jobs DB RapidAPI. The API has no country
// parameter, so the requested country is enforced post-fetch against the
// heuristic countries_derived field.
type ActiveJobs struct {
	cfg  config.RapidAPIConfig
	deps *Deps
}

func NewActiveJobs(cfg config.RapidAPIConfig, deps *Deps) *ActiveJobs {
	if cfg.Host == "" {
		cfg.Host = activeJobsDefaultHost
	}
	return &ActiveJobs{cfg: cfg, deps: deps}
}

func (a *ActiveJobs) Name() string {
	return activeJobsName
}

type activeJobsItem struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Organization     string          `json:"organization"`
	OrganizationLogo string          `json:"organization_logo"`
	LocationsDerived []string        `json:"locations_derived"`
	CountriesDerived []string        `json:"countries_derived"`
	SalaryRaw        json.RawMessage `json:"salary_raw"`
	EmploymentType   []string        `json:"employment_type"`
	DatePosted       string          `json:"date_posted"`
	URL              string          `json:"url"`
}

func (a *ActiveJobs) FetchJobs(ctx context.Context, params JobParams) ([]models.ExternalJob, bool, error) {

	if a.cfg.APIKey == "" {
		log.Warn("ACTIVE_JOBS_API_KEY not set, skipping activejobs")
		return nil, false, nil
	}

	values := url.Values{}
	values.Set("title_filter", params.Query)
	values.Set("limit", strconv.Itoa(params.Limit))
	values.Set("offset", strconv.Itoa((params.Page-1)*params.Limit))
	if params.Location != "" {
		values.Set("location_filter", params.Location)
	}
	requestURL := "https://" + a.cfg.Host + "/active-ats-7d?" + values.Encode()

	key := cache.Key(activeJobsName, map[string]string{"url": requestURL, "country": params.Country})

	jobs, fromCache, err := cache.Wrap(ctx, a.deps.Cache, key, jobsCacheTTL, []string{"jobs", activeJobsName},
		func(ctx context.Context) ([]models.ExternalJob, error) {
			var items []activeJobsItem
			err := a.deps.getJSON(ctx, activeJobsName, "search", func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("X-RapidAPI-Key", a.cfg.APIKey)
				req.Header.Set("X-RapidAPI-Host", a.cfg.Host)
				return req, nil
			}, &items)
			if err != nil {
				return nil, err
			}
			return a.normalize(items, params.Country), nil
		})

	if err != nil {
		return []models.ExternalJob{}, false, err
	}
	return jobs, fromCache, nil
}

func (a *ActiveJobs) normalize(items []activeJobsItem, country string) []models.ExternalJob {
	jobs := make([]models.ExternalJob, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Title == "" {
			continue
		}
		if country != "" && !models.MatchesCountry(country, item.CountriesDerived) {
			continue
		}

		job := models.NewExternalJob(activeJobsName, item.ID)
		job.Title = item.Title
		job.Location = strings.Join(item.LocationsDerived, "; ")
		job.EmploymentType = strings.Join(item.EmploymentType, ", ")
		job.ApplicationURL = item.URL
		job.PublishedAt = parseTime(time.RFC3339, item.DatePosted)
		if item.Organization != "" {
			job.Company = &models.ExternalCompany{
				Name:    item.Organization,
				LogoURL: item.OrganizationLogo,
			}
		}

		if salary := models.ParseSalaryJSON(item.SalaryRaw); salary != nil {
			job.SalaryMin = salary.Min
			job.SalaryMax = salary.Max
			job.SalaryCurrency = salary.Currency
			job.SalaryPeriod = salary.Period
		}

		jobs = append(jobs, job)
	}
	return jobs
}
