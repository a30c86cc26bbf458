package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mandi_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	StatementsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandi_statements_generated_total",
			Help: "Ledger statements built, by ledger kind",
		},
		[]string{"ledger_kind"},
	)

	StatementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mandi_statement_duration_seconds",
			Help:    "Time to build a ledger statement",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	DocumentNumbersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandi_document_numbers_issued_total",
			Help: "Document numbers allocated, by document kind",
		},
		[]string{"kind"},
	)

	BillsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandi_bills_rejected_total",
			Help: "Bill requests rejected, by bill kind and reason",
		},
		[]string{"kind", "reason"},
	)

	EventsPublishFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mandi_events_publish_failed_total",
			Help: "Domain events that could not be delivered to the broker",
		},
	)
)
