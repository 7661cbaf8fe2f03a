package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)

	RecipesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipes_written_total",
			Help: "Recipes created or updated",
		},
		[]string{"operation"},
	)

	CompositionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_composition_rejections_total",
			Help: "Recipe composition violations by kind",
		},
		[]string{"kind"},
	)

	ShoppingListExports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_exports_total",
			Help: "Shopping lists downloaded",
		},
	)

	ShortLinkResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_resolutions_total",
			Help: "Short link lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RecipesWritten,
		CompositionRejections,
		ShoppingListExports,
		ShortLinkResolutions,
	)
}
