package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestSeconds  *prometheus.HistogramVec
	RadiusMatches   prometheus.Histogram
	AddressesLoaded prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "address_api_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "address_api_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RadiusMatches: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "address_api_radius_search_matches",
			Help:    "Number of addresses returned by a radius search.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		AddressesLoaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "address_api_addresses_loaded_total",
			Help: "Total number of addresses inserted by bulk loads.",
		}),
	}
}
