package sources

import (
	"context"
	"net/http"
	"testing"

	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adzunaTestConfig() config.AdzunaConfig {
	return config.AdzunaConfig{AppID: "id", AppKey: "key", Country: "de"}
}

func TestAdzuna_FetchJobsNormalizesResults(t *testing.T) {

	client := &stubHTTPClient{responses: []*http.Response{
		httpResponse(200, fixture(t, "adzuna_response.json")),
	}}
	adzuna := NewAdzuna(adzunaTestConfig(), newTestDeps(client))

	jobs, fromCache, err := adzuna.FetchJobs(context.Background(), JobParams{Query: "golang", Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, jobs, 2, "entry without id must be skipped")

	job := jobs[0]
	assert.Equal(t, "adzuna:4812001", job.ID)
	assert.Equal(t, "4812001", job.ExternalID)
	assert.Equal(t, "adzuna", job.Source)
	assert.True(t, job.IsExternal)
	assert.Equal(t, "Senior Go Developer", job.Title)
	assert.Equal(t, "Berlin, Deutschland", job.Location)
	assert.Equal(t, "ACME GmbH", job.Company.Name)
	assert.Equal(t, 65000.0, *job.SalaryMin)
	assert.Equal(t, 85000.0, *job.SalaryMax)
	assert.Equal(t, models.SalaryYearly, job.SalaryPeriod)
	assert.Equal(t, "full_time", job.EmploymentType)
	assert.NotNil(t, job.PublishedAt)

	// zero salaries become nil, not zero pointers
	assert.Nil(t, jobs[1].SalaryMin)
	assert.Nil(t, jobs[1].SalaryMax)
}

func TestAdzuna_SecondFetchServedFromCache(t *testing.T) {

	client := &stubHTTPClient{responses: []*http.Response{
		httpResponse(200, fixture(t, "adzuna_response.json")),
	}}
	adzuna := NewAdzuna(adzunaTestConfig(), newTestDeps(client))
	params := JobParams{Query: "golang", Page: 1, Limit: 20}

	_, fromCache, err := adzuna.FetchJobs(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, fromCache)

	jobs, fromCache, err := adzuna.FetchJobs(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Len(t, jobs, 2)
	assert.Len(t, client.requests, 1)
}

func TestAdzuna_RequestCarriesCredentialsAndQuery(t *testing.T) {

	client := &stubHTTPClient{}
	adzuna := NewAdzuna(adzunaTestConfig(), newTestDeps(client))

	_, _, err := adzuna.FetchJobs(context.Background(), JobParams{Query: "golang", Location: "Berlin", Page: 2, Limit: 10})
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Contains(t, req.URL.Path, "/de/search/2")
	query := req.URL.Query()
	assert.Equal(t, "id", query.Get("app_id"))
	assert.Equal(t, "key", query.Get("app_key"))
	assert.Equal(t, "golang", query.Get("what"))
	assert.Equal(t, "Berlin", query.Get("where"))
	assert.Equal(t, "10", query.Get("results_per_page"))
}

func TestAdzuna_MissingCredentialsSkips(t *testing.T) {

	client := &stubHTTPClient{}
	adzuna := NewAdzuna(config.AdzunaConfig{}, newTestDeps(client))

	jobs, fromCache, err := adzuna.FetchJobs(context.Background(), JobParams{Query: "golang", Page: 1, Limit: 20})

	assert.NoError(t, err)
	assert.False(t, fromCache)
	assert.Empty(t, jobs)
	assert.Empty(t, client.requests)
}

func TestAdzuna_ServerErrorAfterRetriesFails(t *testing.T) {

	client := &stubHTTPClient{responses: []*http.Response{
		httpResponse(500, `oops`),
		httpResponse(500, `oops`),
		httpResponse(500, `oops`),
	}}
	adzuna := NewAdzuna(adzunaTestConfig(), newTestDeps(client))

	_, _, err := adzuna.FetchJobs(context.Background(), JobParams{Query: "golang", Page: 1, Limit: 20})

	assert.Error(t, err)
	assert.Len(t, client.requests, 3)
}
