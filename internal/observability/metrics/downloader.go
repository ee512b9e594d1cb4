package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DownloaderMetrics contains all Prometheus metrics related to metadata
// lookups and image downloads.
type DownloaderMetrics struct {
	MetadataRequests *prometheus.CounterVec
	MetadataDuration prometheus.Histogram
	Downloads        prometheus.Counter
	DownloadErrors   *prometheus.CounterVec
	DownloadBytes    prometheus.Counter
	DownloadDuration prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewDownloaderMetrics creates a new instance of DownloaderMetrics.
// It returns an error if metric registration fails.
func NewDownloaderMetrics(registry *prometheus.Registry) (*DownloaderMetrics, error) {
	m := &DownloaderMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize Downloader metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register Downloader metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for DownloaderMetrics.
func (m *DownloaderMetrics) initMetrics() error {
	m.MetadataRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeart_metadata_requests_total",
		Help: "Total number of metadata lookups by result.",
	}, []string{LabelResult})

	m.MetadataDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokeart_metadata_duration_seconds",
		Help:    "Duration of metadata lookups in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
	})

	m.Downloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pokeart_downloads_total",
		Help: "Total number of images saved to disk.",
	})

	m.DownloadErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeart_download_errors_total",
		Help: "Total number of failed downloads by error category.",
	}, []string{LabelCategory})

	m.DownloadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pokeart_download_bytes_total",
		Help: "Total number of image bytes written to disk.",
	})

	m.DownloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokeart_download_duration_seconds",
		Help:    "Duration of complete downloads in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeart_http_requests_total",
		Help: "Total number of outbound HTTP requests by host and status.",
	}, []string{LabelHost, LabelStatus})

	return nil
}

// RecordMetadataRequest counts a metadata lookup and its duration.
func (m *DownloaderMetrics) RecordMetadataRequest(result string, duration time.Duration) {
	m.MetadataRequests.WithLabelValues(result).Inc()
	m.MetadataDuration.Observe(duration.Seconds())
}

// RecordDownload records a successful download.
func (m *DownloaderMetrics) RecordDownload(bytes int64, duration time.Duration) {
	m.Downloads.Inc()
	m.DownloadBytes.Add(float64(bytes))
	m.DownloadDuration.Observe(duration.Seconds())
}

// RecordDownloadError counts a failed download under its error category.
func (m *DownloaderMetrics) RecordDownloadError(category string) {
	m.DownloadErrors.WithLabelValues(category).Inc()
}

// ObserveHTTPResponse matches the httpclient after-response hook signature.
func (m *DownloaderMetrics) ObserveHTTPResponse(req *http.Request, resp *http.Response, err error) {
	host := ""
	if req != nil && req.URL != nil {
		host = req.URL.Host
	}
	status := statusTransportError
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	m.HTTPRequests.WithLabelValues(host, status).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *DownloaderMetrics) Collect(ch chan<- prometheus.Metric) {
	m.MetadataRequests.Collect(ch)
	ch <- m.MetadataDuration
	ch <- m.Downloads
	m.DownloadErrors.Collect(ch)
	ch <- m.DownloadBytes
	ch <- m.DownloadDuration
	m.HTTPRequests.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *DownloaderMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.MetadataRequests.Describe(ch)
	ch <- m.MetadataDuration.Desc()
	ch <- m.Downloads.Desc()
	m.DownloadErrors.Describe(ch)
	ch <- m.DownloadBytes.Desc()
	ch <- m.DownloadDuration.Desc()
	m.HTTPRequests.Describe(ch)
}
