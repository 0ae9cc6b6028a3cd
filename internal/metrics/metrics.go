package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clienthunter_fetch_requests_total",
			Help: "Total page fetches executed, by component and outcome",
		},
		[]string{"component", "status", "blocked"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clienthunter_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"component"},
	)

	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clienthunter_platform_detections_total",
			Help: "Platform detection verdicts, by indicator and confidence",
		},
		[]string{"indicator", "confidence"},
	)

	EmailsFoundTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clienthunter_emails_found_total",
			Help: "Emails retained after noise filtering",
		},
	)

	SearchResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clienthunter_search_results_total",
			Help: "Deduplicated search results discovered",
		},
	)
)

// FetchOutcome is the minimal view of a fetch needed for instrumentation.
// It avoids an import cycle with the scraper package.
type FetchOutcome interface {
	FetchStatus() (statusCode int, blocked bool, failed bool, duration time.Duration)
}

// RecordFetch updates fetch counters for a completed fetch.
func RecordFetch(component string, outcome FetchOutcome) {
	if outcome == nil {
		return
	}
	statusCode, blocked, failed, duration := outcome.FetchStatus()

	status := strconv.Itoa(statusCode)
	if failed {
		status = "error"
	}
	FetchRequestsTotal.WithLabelValues(component, status, strconv.FormatBool(blocked)).Inc()
	FetchDuration.WithLabelValues(component).Observe(duration.Seconds())
}

// RecordDetection updates detection counters for one verdict.
func RecordDetection(indicator, confidence string) {
	if indicator == "" {
		indicator = "none"
	}
	DetectionsTotal.WithLabelValues(indicator, confidence).Inc()
}

// Server exposes /metrics over HTTP.
type Server struct {
	srv *http.Server
}

// Start begins serving Prometheus metrics on the given port.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
