package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offerhub_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	FetchDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "offerhub_provider_fetch_duration_seconds",
			Help:       "Duration of remote fetches per provider.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"provider"},
	)
	CacheRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offerhub_cache_requests_total",
			Help: "Cache lookups partitioned by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	RateLimitWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offerhub_rate_limit_wait_seconds",
			Help:    "Time spent waiting for a rate limiter slot.",
			Buckets: []float64{0.01, 0.1, 1, 5, 30, 60, 300},
		},
		[]string{"provider"},
	)
	ImportedRecordsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offerhub_imported_records_total",
			Help: "Import outcomes per source.",
		},
		[]string{"source", "result"},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(CacheRequestsCounter)
	prometheus.MustRegister(RateLimitWaitDuration)
	prometheus.MustRegister(ImportedRecordsCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
