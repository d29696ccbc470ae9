package lsp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
)

// Message kinds used as metric labels.
const (
	kindRequest      = "request"
	kindNotification = "notification"
)

// Outcome labels.
const (
	resultOK    = "ok"
	resultError = "error"
	resultPanic = "panic"
)

const metricsShutdownTimeout = 2 * time.Second

var tracer = otel.Tracer("ritobin-lsp")

var (
	// messagesTotal counts handled messages by method, kind and outcome.
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ritobin_lsp_messages_total",
		Help: "Total handled messages by method, kind and result",
	}, []string{"method", "kind", "result"})

	// messageDuration tracks handler latency.
	messageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ritobin_lsp_message_duration_seconds",
		Help:    "Message handler duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"method"})

	// inflightWorkers tracks handler goroutines that have not finished.
	inflightWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ritobin_lsp_inflight_workers",
		Help: "Number of message handlers currently running or waiting for a slot",
	})

	// openDocuments tracks the size of the document cache.
	openDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ritobin_lsp_open_documents",
		Help: "Number of documents in the cache",
	})

	// publishedDiagnostics tracks the number of diagnostics per publish.
	publishedDiagnostics = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ritobin_lsp_published_diagnostics",
		Help:    "Number of diagnostics per publishDiagnostics notification",
		Buckets: []float64{0, 1, 2, 5, 10, 20},
	})

	// semanticTokenCount tracks the number of tokens per semantic token result.
	semanticTokenCount = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ritobin_lsp_semantic_tokens",
		Help:    "Number of semantic tokens computed per request",
		Buckets: []float64{10, 100, 1000, 10000, 100000},
	}, []string{"method"})
)

// startMessageSpan creates a span for handling one message.
func startMessageSpan(ctx context.Context, msg *Message, kind string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "lsp."+msg.Method,
		trace.WithAttributes(
			attribute.String("lsp.method", msg.Method),
			attribute.String("lsp.kind", kind),
			attribute.String("lsp.id", string(msg.ID)),
		),
	)
}

// recordMessage records the outcome of a handled message.
func recordMessage(span trace.Span, method, kind, result string, duration time.Duration) {
	span.SetAttributes(attribute.String("lsp.result", result))
	messagesTotal.WithLabelValues(method, kind, result).Inc()
	messageDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// MetricsHandler returns the HTTP handler exposing the Prometheus registry
// at /metrics.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ServeMetrics serves MetricsHandler on addr until ctx is canceled.
func ServeMetrics(ctx context.Context, addr string, logger *log.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           MetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", "addr", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", logging.FieldError, err)
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
