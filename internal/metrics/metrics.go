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
			Name: "scraper_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"error_type"},
	)
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Total number of pages navigated to.",
		},
	)
	RecordsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Total number of records extracted, by record kind.",
		},
		[]string{"kind"},
	)
	RecordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_records_skipped_total",
			Help: "Total number of records skipped due to extraction failures, by record kind.",
		},
		[]string{"kind"},
	)
	RateLimitWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_rate_limit_wait_seconds",
			Help:    "Time spent waiting for rate limiter tokens.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)
	ActiveOperations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_active_operations",
			Help: "Number of operations currently holding a concurrency slot.",
		},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(PagesFetched)
	prometheus.MustRegister(RecordsExtracted)
	prometheus.MustRegister(RecordsSkipped)
	prometheus.MustRegister(RateLimitWait)
	prometheus.MustRegister(ActiveOperations)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
