package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoutRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_runs_total",
		Help: "Total pipeline runs",
	})
	ScoutErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_run_errors_total",
		Help: "Total pipeline runs that failed",
	})
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadscout_run_duration_seconds",
		Help:    "Pipeline run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	PostsFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_posts_fetched_total",
		Help: "Total posts pulled from the feed",
	})
	LeadsFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_leads_found_total",
		Help: "Total posts that passed the keyword filter",
	})
	LeadsPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_leads_persisted_total",
		Help: "Total leads written to the sink",
	})
	DuplicatesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_duplicates_skipped_total",
		Help: "Total leads skipped as already present in the sink",
	})
	InferenceCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscout_inference_calls_total",
		Help: "Total inference calls by purpose",
	}, []string{"purpose"})
	InferenceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscout_inference_errors_total",
		Help: "Total failed inference calls by purpose",
	}, []string{"purpose"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscout_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leadscout_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(
		ScoutRuns, ScoutErrors, RunDuration,
		PostsFetched, LeadsFound, LeadsPersisted, DuplicatesSkipped,
		InferenceCalls, InferenceErrors,
		CommandRuns, CommandErrors,
	)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveRunDuration records a pipeline run duration.
func ObserveRunDuration(start time.Time) {
	RunDuration.Observe(time.Since(start).Seconds())
}

// IncInferenceCall counts an inference call for a purpose (score, worthy, draft).
func IncInferenceCall(purpose string) { InferenceCalls.WithLabelValues(purpose).Inc() }

// IncInferenceError counts a failed inference call for a purpose.
func IncInferenceError(purpose string) { InferenceErrors.WithLabelValues(purpose).Inc() }

// IncCommandRun counts a CLI command invocation.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError counts a CLI command failure.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
