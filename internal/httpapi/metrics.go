package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// scansTotal counts ingested scan events by door and aggregation outcome
	// (created/merged/reset/stale). Door names are a small fixed set per
	// site, so cardinality stays bounded.
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorboard_scans_total",
			Help: "Scan events ingested, by door and aggregation outcome.",
		},
		[]string{"door", "outcome"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorboard_http_requests_total",
			Help: "HTTP requests, by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doorboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
