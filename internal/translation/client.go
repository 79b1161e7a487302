package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const translationCacheTTL = 7 * 24 * time.Hour

// Result distinguishes a quota refusal from a hard failure: a rate limited
// call is not an error, the caller just retries another day.
type Result struct {
	Translation string
	RateLimited bool
}

type translateResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus int `json:"responseStatus"`
}

// Client talks to a MyMemory-compatible translation endpoint. Minute pacing
// blocks, the day quota refuses: burning a whole day's budget waiting on
// Wait would stall the import pipeline for hours.
type Client struct {
	http              *resty.Client
	store             cache.Store
	minuteRateLimiter *rate.Limiter
	dayRateLimiter    *rate.Limiter
}

func NewClient(baseURL string, store cache.Store) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second),
		store: store,
	}
}

func (c *Client) SetMinuteRateLimit(maxRequestsPerMinute float32) {
	c.minuteRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerMinute/60), 1)
}

func (c *Client) SetDayRateLimit(maxRequestsPerDay float32) {
	c.dayRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerDay/86400), int(maxRequestsPerDay))
}

// Translate returns the text translated from sourceLang to targetLang.
// Identical inputs are served from cache without touching the quota.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, error) {

	if text == "" {
		return Result{}, nil
	}

	key := translationKey(text, sourceLang, targetLang)
	translated, _, err := cache.Wrap(ctx, c.store, key, translationCacheTTL, []string{"translations"},
		func(ctx context.Context) (string, error) {
			return c.fetchTranslation(ctx, text, sourceLang, targetLang)
		})
	if err != nil {
		if errors.Is(err, errDayQuotaExceeded) {
			return Result{RateLimited: true}, nil
		}
		return Result{}, err
	}

	return Result{Translation: translated}, nil
}

var errDayQuotaExceeded = errors.New("daily translation quota exceeded")

func (c *Client) fetchTranslation(ctx context.Context, text, sourceLang, targetLang string) (string, error) {

	if c.dayRateLimiter != nil && !c.dayRateLimiter.Allow() {
		return "", errDayQuotaExceeded
	}
	if c.minuteRateLimiter != nil {
		if err := c.minuteRateLimiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var translated string
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(3, 2*time.Second, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warn("translation api returned server error, retrying...")
		}
		translated, err = c.tryFetchTranslation(ctx, text, sourceLang, targetLang)
		return err, isServerError(err)
	})

	return translated, err
}

func (c *Client) tryFetchTranslation(ctx context.Context, text, sourceLang, targetLang string) (string, error) {

	var body translateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", text).
		SetQueryParam("langpair", sourceLang+"|"+targetLang).
		SetResult(&body).
		Get("/get")
	if err != nil {
		return "", errors.Wrap(err, "translation request failed")
	}
	if resp.IsError() {
		return "", &serverError{statusCode: resp.StatusCode()}
	}
	if body.ResponseData.TranslatedText == "" {
		return "", errors.New("translation response contains no text")
	}

	return body.ResponseData.TranslatedText, nil
}

type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("translation api returned status %d", e.statusCode)
}

func isServerError(err error) bool {
	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return srvErr.statusCode >= 500
	}
	return false
}

func translationKey(text, sourceLang, targetLang string) string {
	digest := sha256.Sum256([]byte(text))
	return cache.Key("translation", map[string]string{
		"text": hex.EncodeToString(digest[:]),
		"from": sourceLang,
		"to":   targetLang,
	})
}
