package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farm_computer_lookup_duration_seconds",
			Help:    "Wiki lookup duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"outcome"},
	)

	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_computer_lookup_total",
			Help: "Total wiki lookups processed",
		},
		[]string{"outcome"},
	)

	ResolutionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_computer_resolution_total",
			Help: "Resolution outcomes by strategy",
		},
		[]string{"strategy"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_computer_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"layer"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farm_computer_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"layer"},
	)

	IndexTitles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "farm_computer_index_titles",
			Help: "Page titles in the current index snapshot",
		},
	)

	IndexRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "farm_computer_index_refresh_duration_seconds",
			Help:    "Page index refresh duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

func Init() {
	prometheus.MustRegister(LookupDuration)
	prometheus.MustRegister(LookupTotal)
	prometheus.MustRegister(ResolutionTotal)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(IndexTitles)
	prometheus.MustRegister(IndexRefreshDuration)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
