package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Console metrics collectors
var (
	// Mutations

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensedesk_mutations_total",
			Help: "Total number of license mutations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	MutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licensedesk_mutation_duration_seconds",
			Help:    "License mutation latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	CodeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "licensedesk_code_collisions_total",
			Help: "Total number of regenerated license codes that collided with an existing one",
		},
	)

	// Reads

	DatastoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensedesk_datastore_errors_total",
			Help: "Total number of failed datastore reads",
		},
		[]string{"operation"},
	)

	ExportRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "licensedesk_export_rows_total",
			Help: "Total number of license rows exported as CSV",
		},
	)

	// HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensedesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licensedesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)
