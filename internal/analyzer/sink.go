package analyzer

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Sink receives each report produced by the analyzer. Emission failures
// are reported to the analyzer but never abort its schedule.
type Sink interface {
	Emit(report BehaviorReport) error
}

// ConsoleSink writes a human-readable summary of each report. The output
// is not a stable machine-readable contract.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout}
}

// Emit prints the report summary.
func (s *ConsoleSink) Emit(report BehaviorReport) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	if _, err := bold.Fprintf(s.out, "Behavior report @ %s\n", report.Timestamp.Format("15:04:05")); err != nil {
		return err
	}

	if report.TopApp == "" {
		_, err := fmt.Fprintln(s.out, "  no activity observed yet")
		return err
	}

	_, _ = cyan.Fprintf(s.out, "  top app:       %s (%s)\n", report.TopApp, report.TopAppDuration.Round(0))
	_, _ = fmt.Fprintf(s.out, "  total focus:   %s\n", report.TotalFocus)
	_, _ = fmt.Fprintf(s.out, "  switches:      %d\n", report.TotalSwitches)
	_, _ = fmt.Fprintf(s.out, "  avg focus:     %.2fs\n", report.AvgFocusSeconds)
	_, err := fmt.Fprintf(s.out, "  fragmentation: %.2f\n", report.FragmentationIndex)
	return err
}

// LogSink emits each report as one structured log event.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging through the given logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "behavior-report").Logger()}
}

// Emit logs the report.
func (s *LogSink) Emit(report BehaviorReport) error {
	s.logger.Info().
		Str("report_id", report.ID).
		Str("top_app", report.TopApp).
		Dur("top_app_duration", report.TopAppDuration).
		Dur("total_focus", report.TotalFocus).
		Int("total_switches", report.TotalSwitches).
		Float64("avg_focus_seconds", report.AvgFocusSeconds).
		Float64("fragmentation_index", report.FragmentationIndex).
		Msg("Behavior report")
	return nil
}
