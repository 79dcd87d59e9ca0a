// Package metrics provides Prometheus metrics for the DokuWiki tools.
// It tracks XML-RPC calls, HTTP round trips, conversions and MCP tool calls.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "dokuwiki_tools"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures tool call latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing tool calls
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// RPCCallsTotal counts XML-RPC calls by method and status
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rpc_calls_total",
		Help:      "Total XML-RPC calls by method and status",
	}, []string{"method", "status"})

	// RPCLatency measures XML-RPC call latency by method
	RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "rpc_latency_seconds",
		Help:      "XML-RPC call latency by method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// RPCErrors counts XML-RPC errors by method and error code
	RPCErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "rpc_errors_total",
		Help:      "XML-RPC errors by method and error code",
	}, []string{"method", "error_code"})

	// HTTPRequestsTotal counts transport round trips by response status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP POSTs to the wiki endpoint by status",
	}, []string{"status"})

	// HTTPRequestDuration measures transport round trip latency
	HTTPRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP round trip latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// LoginResults counts login attempts by outcome
	LoginResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "login_results_total",
		Help:      "Login attempts by result",
	}, []string{"result"})

	// ContentSize tracks page and attachment sizes processed
	ContentSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "content_size_bytes",
		Help:      "Content size distribution in bytes",
		Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000, 5000000},
	}, []string{"operation"})

	// ConversionsTotal counts converter runs by status
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "conversions_total",
		Help:      "Converter process runs by status",
	}, []string{"status"})

	// ArchivesExtracted counts zip archives extracted
	ArchivesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "archives_extracted_total",
		Help:      "Zip archives extracted",
	})

	// PageUploads counts mapped auto-uploads by status
	PageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "page_uploads_total",
		Help:      "Mapped page uploads by status",
	}, []string{"status"})
)

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRequest records a completed tool call with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordRPCCall records an XML-RPC call. errorCode is empty on success.
func RecordRPCCall(method string, duration float64, errorCode string) {
	RPCCallsTotal.WithLabelValues(method, statusLabel(errorCode == "")).Inc()
	RPCLatency.WithLabelValues(method).Observe(duration)
	if errorCode != "" {
		RPCErrors.WithLabelValues(method, errorCode).Inc()
	}
}

// RecordHTTP records one transport round trip. status 0 means no response.
func RecordHTTP(status int, duration float64) {
	label := "none"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	HTTPRequestsTotal.WithLabelValues(label).Inc()
	HTTPRequestDuration.Observe(duration)
}

// RecordLogin records a login outcome
func RecordLogin(accepted bool) {
	if accepted {
		LoginResults.WithLabelValues("accepted").Inc()
	} else {
		LoginResults.WithLabelValues("rejected").Inc()
	}
}

// RecordContentSize records the size of a page or attachment
func RecordContentSize(operation string, size int) {
	ContentSize.WithLabelValues(operation).Observe(float64(size))
}

// RecordConversion records a converter run
func RecordConversion(success bool) {
	ConversionsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordUpload records a mapped page upload
func RecordUpload(success bool) {
	PageUploads.WithLabelValues(statusLabel(success)).Inc()
}
