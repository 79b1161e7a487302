package sources

import (
	"context"
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

const jsearchName = "jsearch"
const jsearchDefaultHost = "jsearch.p.rapidapi.com"

// JSearch pulls aggregated employment listings from the JSearch RapidAPI.
type JSearch struct {
	cfg  config.RapidAPIConfig
	deps *Deps
}

func NewJSearch(cfg config.RapidAPIConfig, deps *Deps) *JSearch {
	if cfg.Host == "" {
		cfg.Host = jsearchDefaultHost
	}
	return &JSearch{cfg: cfg, deps: deps}
}

func (j *JSearch) Name() string {
	return jsearchName
}

type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

type jsearchJob struct {
	JobID            string   `json:"job_id"`
	Title            string   `json:"job_title"`
	EmployerName     string   `json:"employer_name"`
	EmployerLogo     string   `json:"employer_logo"`
	City             string   `json:"job_city"`
	Country          string   `json:"job_country"`
	MinSalary        float64  `json:"job_min_salary"`
	MaxSalary        float64  `json:"job_max_salary"`
	SalaryCurrency   string   `json:"job_salary_currency"`
	SalaryPeriod     string   `json:"job_salary_period"`
	EmploymentType   string   `json:"job_employment_type"`
	Description      string   `json:"job_description"`
	PostedAt         string   `json:"job_posted_at_datetime_utc"`
	ApplyLink        string   `json:"job_apply_link"`
	OccupationalArea []string `json:"job_occupational_categories"`
}

func (j *JSearch) FetchJobs(ctx context.Context, params JobParams) ([]models.ExternalJob, bool, error) {

	if j.cfg.APIKey == "" {
		log.Warn("JSEARCH_API_KEY not set, skipping jsearch")
		return nil, false, nil
	}

	requestURL := j.buildURL(params)
	key := cache.Key(jsearchName, map[string]string{"url": requestURL})

	jobs, fromCache, err := cache.Wrap(ctx, j.deps.Cache, key, jobsCacheTTL, []string{"jobs", jsearchName},
		func(ctx context.Context) ([]models.ExternalJob, error) {
			var resp jsearchResponse
			err := j.deps.getJSON(ctx, jsearchName, "search", func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("X-RapidAPI-Key", j.cfg.APIKey)
				req.Header.Set("X-RapidAPI-Host", j.cfg.Host)
				return req, nil
			}, &resp)
			if err != nil {
				return nil, err
			}
			return j.normalize(resp.Data), nil
		})

	if err != nil {
		return []models.ExternalJob{}, false, err
	}
	return jobs, fromCache, nil
}

func (j *JSearch) buildURL(params JobParams) string {
	query := params.Query
	if params.Location != "" {
		query += " in " + params.Location
	}

	values := url.Values{}
	values.Set("query", query)
	values.Set("page", strconv.Itoa(params.Page))
	values.Set("num_pages", "1")
	if params.Country != "" {
		values.Set("country", strings.ToLower(params.Country))
	}

	return "https://" + j.cfg.Host + "/search?" + values.Encode()
}

func (j *JSearch) normalize(data []jsearchJob) []models.ExternalJob {
	jobs := make([]models.ExternalJob, 0, len(data))
	for _, item := range data {
		if item.JobID == "" || item.Title == "" {
			continue
		}

		job := models.NewExternalJob(jsearchName, item.JobID)
		job.Title = item.Title
		job.Location = joinLocation(item.City, item.Country)
		job.SalaryMin = floatPtr(item.MinSalary)
		job.SalaryMax = floatPtr(item.MaxSalary)
		job.SalaryCurrency = item.SalaryCurrency
		job.SalaryPeriod = jsearchPeriod(item.SalaryPeriod)
		job.EmploymentType = item.EmploymentType
		job.ShortDescription = truncate(item.Description, 500)
		job.ApplicationURL = item.ApplyLink
		job.PublishedAt = parseTime(time.RFC3339, item.PostedAt)
		if len(item.OccupationalArea) > 0 {
			job.Category = item.OccupationalArea[0]
		}
		if item.EmployerName != "" {
			job.Company = &models.ExternalCompany{
				Name:    item.EmployerName,
				LogoURL: item.EmployerLogo,
			}
		}

		jobs = append(jobs, job)
	}
	return jobs
}

func jsearchPeriod(period string) models.SalaryPeriod {
	switch strings.ToUpper(period) {
	case "HOUR":
		return models.SalaryHourly
	case "MONTH":
		return models.SalaryMonthly
	case "YEAR":
		return models.SalaryYearly
	default:
		return ""
	}
}

func joinLocation(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
