package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/metrics"
	"github.com/avolkov/offerhub/internal/ratelimit"
	"github.com/avolkov/offerhub/internal/retry"
	log "github.com/sirupsen/logrus"
)

const (
	jobsCacheTTL   = time.Hour
	offersCacheTTL = 2 * time.Hour
	requestTimeout = 15 * time.Second
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Deps bundles the pipeline primitives shared by every adapter. They are
// constructed once at process start and injected, so tests can substitute
// fakes.
type Deps struct {
	HTTP    HTTPClient
	Limiter *ratelimit.Limiter
	Cache   cache.Store
	Retry   retry.Options
}

func NewDeps(limiter *ratelimit.Limiter, store cache.Store) *Deps {
	return &Deps{
		HTTP:    &http.Client{},
		Limiter: limiter,
		Cache:   store,
		Retry:   retry.DefaultOptions(),
	}
}

// getJSON issues one rate-limited, retried request and decodes the response
// into out. buildReq is invoked per attempt so request bodies are fresh.
func (d *Deps) getJSON(ctx context.Context, provider, operation string, buildReq func(ctx context.Context) (*http.Request, error), out any) error {

	if err := d.Limiter.Acquire(ctx, provider, operation); err != nil {
		return err
	}
	defer d.Limiter.Release(provider)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	opts := d.Retry
	opts.OnRetry = func(attempt int, err error) {
		log.Warnf("%s %s failed (attempt %d), retrying: %v", provider, operation, attempt, err)
	}

	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	return retry.Do(ctx, opts, func() error {
		req, err := buildReq(ctx)
		if err != nil {
			return fmt.Errorf("error creating request: %v", err)
		}

		resp, err := d.HTTP.Do(req)
		if err != nil {
			return fmt.Errorf("error sending request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %v", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &retry.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("error decoding JSON response: %v", err)
		}
		return nil
	})
}

func floatPtr(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func parseTime(layout, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil
	}
	return &t
}
