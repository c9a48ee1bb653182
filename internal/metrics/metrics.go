package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Sampling metrics
	SamplerTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focuswatch_sampler_ticks_total",
			Help: "Total sampler ticks processed",
		},
	)

	ProviderErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focuswatch_provider_errors_total",
			Help: "Foreground provider lookups that failed and degraded to Unknown",
		},
	)

	// Session metrics
	FocusSecondsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focuswatch_focus_seconds_total",
			Help: "Total foreground seconds committed per application",
		},
		[]string{"app", "category"},
	)

	SwitchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focuswatch_switches_total",
			Help: "Total completed focus spans committed",
		},
	)

	TrackedApps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focuswatch_tracked_apps",
			Help: "Number of distinct applications observed this run",
		},
	)

	// Analyzer metrics
	AnalyzerRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focuswatch_analyzer_runs_total",
			Help: "Total behavior analyzer runs",
		},
	)

	AvgFocusSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focuswatch_avg_focus_seconds",
			Help: "Average focus span length from the latest analyzer run",
		},
	)

	FragmentationIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focuswatch_fragmentation_index",
			Help: "Fragmentation index from the latest analyzer run",
		},
	)

	// Persistence metrics
	FlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focuswatch_daylog_flushes_total",
			Help: "Daily log flushes by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		SamplerTicksTotal,
		ProviderErrorsTotal,
		FocusSecondsTotal,
		SwitchesTotal,
		TrackedApps,
		AnalyzerRunsTotal,
		AvgFocusSeconds,
		FragmentationIndex,
		FlushesTotal,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a new metrics server. Extra handlers (such as the
// analyzer's report history endpoint) can be registered alongside /metrics.
func NewServer(addr string, logger zerolog.Logger, extra map[string]http.Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	for path, handler := range extra {
		mux.Handle(path, handler)
	}

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
