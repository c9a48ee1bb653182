package analyzer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/focuswatch/focuswatch/internal/clock"
	"github.com/focuswatch/focuswatch/internal/metrics"
	"github.com/focuswatch/focuswatch/internal/store"
)

// DefaultInterval is the default analysis period.
const DefaultInterval = 30 * time.Second

// Analyzer periodically derives behavioral metrics from a consistent
// snapshot of the session store. Its output is best-effort telemetry:
// cancellation does not guarantee a final run.
type Analyzer struct {
	sessions *store.SessionStore
	sinks    []Sink
	history  *History
	clock    clock.Clock
	interval time.Duration
	logger   zerolog.Logger
}

// Config holds analyzer configuration
type Config struct {
	Interval time.Duration
}

// New creates an analyzer. history may be nil when no report history is
// wanted.
func New(sessions *store.SessionStore, sinks []Sink, history *History, clk clock.Clock, config Config, logger zerolog.Logger) *Analyzer {
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}

	return &Analyzer{
		sessions: sessions,
		sinks:    sinks,
		history:  history,
		clock:    clk,
		interval: config.Interval,
		logger:   logger.With().Str("component", "analyzer").Logger(),
	}
}

// Run analyzes on a fixed period until ctx is cancelled.
func (a *Analyzer) Run(ctx context.Context) {
	a.logger.Info().Dur("interval", a.interval).Msg("Analyzer started")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.RunOnce()
		case <-ctx.Done():
			a.logger.Info().Msg("Analyzer stopped")
			return
		}
	}
}

// RunOnce takes one snapshot, derives a report, and emits it. This is the
// analyzer's only interaction with shared state.
func (a *Analyzer) RunOnce() BehaviorReport {
	metrics.AnalyzerRunsTotal.Inc()

	report := Analyze(a.sessions.Snapshot(), a.clock.Now())

	metrics.AvgFocusSeconds.Set(report.AvgFocusSeconds)
	metrics.FragmentationIndex.Set(report.FragmentationIndex)

	if a.history != nil {
		a.history.Add(report)
	}

	for _, sink := range a.sinks {
		if err := sink.Emit(report); err != nil {
			a.logger.Error().Err(err).Str("report_id", report.ID).Msg("Failed to emit behavior report")
		}
	}

	return report
}
