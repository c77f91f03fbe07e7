// Package obs exposes Prometheus counters/gauges tracking the ingestion
// pipeline and serves them alongside a liveness endpoint, grounded on the
// teacher's gorilla/mux + gorilla/handlers HTTP server wiring in server.go.
package obs

import (
	"io"
	"net/http"

	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters is the subset of internal/counters.Table that obs exports at
// scrape time (the pause state as a gauge, the rest as counters).
type Counters interface {
	MetricsReceived() int64
	CacheQueries() int64
	FramingErrors() int64
	ParseErrors() int64
	ClientsPaused() bool
}

// Cache is the subset of internal/cache.Cache that obs exports.
type Cache interface {
	Size() int64
}

var (
	metricsReceived = prometheus.NewDesc("carbond_metrics_received_total", "Datapoints accepted across all listeners.", nil, nil)
	cacheQueries    = prometheus.NewDesc("carbond_cache_queries_total", "Query-protocol requests served.", nil, nil)
	framingErrors   = prometheus.NewDesc("carbond_framing_errors_total", "Protocol framing errors observed.", nil, nil)
	parseErrors     = prometheus.NewDesc("carbond_parse_errors_total", "Line-protocol records dropped for failing to parse.", nil, nil)
	cacheSize       = prometheus.NewDesc("carbond_cache_size", "Datapoints currently held in the cache.", nil, nil)
	clientsPaused   = prometheus.NewDesc("carbond_clients_paused", "1 if ingestion clients are currently paused for flow control, else 0.", nil, nil)
)

// collector adapts the counters/cache snapshot to prometheus.Collector
// without requiring the counters themselves to depend on the client
// library, mirroring the teacher's preference for small interfaces at
// package boundaries.
type collector struct {
	counters Counters
	cache    Cache
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- metricsReceived
	ch <- cacheQueries
	ch <- framingErrors
	ch <- parseErrors
	ch <- cacheSize
	ch <- clientsPaused
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(metricsReceived, prometheus.CounterValue, float64(c.counters.MetricsReceived()))
	ch <- prometheus.MustNewConstMetric(cacheQueries, prometheus.CounterValue, float64(c.counters.CacheQueries()))
	ch <- prometheus.MustNewConstMetric(framingErrors, prometheus.CounterValue, float64(c.counters.FramingErrors()))
	ch <- prometheus.MustNewConstMetric(parseErrors, prometheus.CounterValue, float64(c.counters.ParseErrors()))
	ch <- prometheus.MustNewConstMetric(cacheSize, prometheus.GaugeValue, float64(c.cache.Size()))

	paused := 0.0
	if c.counters.ClientsPaused() {
		paused = 1.0
	}
	ch <- prometheus.MustNewConstMetric(clientsPaused, prometheus.GaugeValue, paused)
}

// NewHandler builds the /metrics and /healthz router, wrapped in the
// teacher's compression + access-log middleware stack.
func NewHandler(counters Counters, cache Cache) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(&collector{counters: counters, cache: cache})

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})

	r.Use(handlers.CompressHandler)
	return handlers.CustomLoggingHandler(carbondlog.InfoWriter, r, func(w io.Writer, params handlers.LogFormatterParams) {
		carbondlog.ComponentDebug("obs", params.Request.Method, params.URL.RequestURI(), "status", params.StatusCode, "size", params.Size)
	})
}
