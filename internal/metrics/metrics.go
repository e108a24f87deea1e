package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogsearch_http_requests_total",
		Help: "Total number of HTTP requests to the web adapter",
	}, []string{"method", "route", "status"})

	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogsearch_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogsearch_upstream_requests_total",
		Help: "Outbound blog search calls by outcome",
	}, []string{"outcome"})

	UpstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogsearch_upstream_request_duration_seconds",
		Help:    "Duration of outbound blog search calls in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// SupersededTotal считает ответы, отброшенные как устаревшие
	SupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogsearch_superseded_responses_total",
		Help: "Search responses discarded because a newer keyword was navigated to",
	})
)
