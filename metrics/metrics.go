// Package metrics exposes Prometheus instrumentation for the API process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled HTTP requests by route, method and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listingflow_http_requests_total",
		Help: "The total number of HTTP requests handled",
	}, []string{"route", "method", "status"})

	// RequestDuration tracks handler latency by route and method.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listingflow_http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// LoginAttemptsTotal counts login outcomes.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listingflow_login_attempts_total",
		Help: "The total number of login attempts by outcome",
	}, []string{"status"})

	// TokenRefreshTotal counts refresh-token rotations.
	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listingflow_token_refresh_total",
		Help: "The total number of refresh token rotations by outcome",
	}, []string{"status"})

	// ImageUploadsTotal counts listing image uploads.
	ImageUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listingflow_image_uploads_total",
		Help: "The total number of listing image uploads by outcome",
	}, []string{"status"})

	// RevokedTokensCleaned counts refresh tokens removed by the cleanup loop.
	RevokedTokensCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listingflow_refresh_tokens_cleaned_total",
		Help: "The total number of expired refresh tokens removed",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
