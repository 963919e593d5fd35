package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	EntitiesInQueue      prometheus.Gauge
	EntitiesInFlight     prometheus.Gauge
	SectionsFetchedTotal *prometheus.CounterVec
	SectionFetchDuration *prometheus.HistogramVec
	RelayInsertsTotal    *prometheus.CounterVec

	initOnce sync.Once
)

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	EntitiesInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisory_entities_in_queue",
			Help: "Current number of countries waiting in the scrape queue.",
		},
	)

	EntitiesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisory_entities_in_flight",
			Help: "Countries currently being fetched by a worker.",
		},
	)

	SectionsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_sections_fetched_total",
			Help: "Section fetches by outcome.",
		},
		[]string{"outcome"}, // ok, unavailable, error
	)

	SectionFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisory_section_fetch_duration_seconds",
			Help:    "Duration of a single section fetch.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"section"},
	)

	RelayInsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_inserts_total",
			Help: "Rows sent to the relational store by table and outcome.",
		},
		[]string{"table", "outcome"}, // outcome: success, failure
	)
}
