package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/focuswatch/focuswatch/internal/analyzer"
	"github.com/focuswatch/focuswatch/internal/classify"
	"github.com/focuswatch/focuswatch/internal/clock"
	"github.com/focuswatch/focuswatch/internal/config"
	"github.com/focuswatch/focuswatch/internal/daylog"
	"github.com/focuswatch/focuswatch/internal/metrics"
	"github.com/focuswatch/focuswatch/internal/sampler"
	"github.com/focuswatch/focuswatch/internal/store"
	"github.com/focuswatch/focuswatch/internal/systemd"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the focuswatch daemon",
	Long:  `Start foreground sampling, behavior analysis, the daily log scheduler, and the metrics endpoint.`,
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging).With().Str("run_id", uuid.NewString()).Logger()
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting focuswatch")

	// Initialize classifier
	classifier, watcher, err := buildClassifier(cfg.Classify, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}
	if watcher != nil {
		watcher.Start()
	}

	logger.Info().Int("entries", classifier.Size()).Msg("Classifier initialized")

	// Initialize session store
	clk := clock.RealClock{}
	sessions := store.NewSessionStore(clk.Now(), logger)

	// Initialize foreground provider
	provider := buildProvider(cfg.Sampler, logger)

	// Initialize sampler
	activitySampler := sampler.New(
		provider,
		classifier,
		sessions,
		clk,
		sampler.Config{Interval: parseDuration(cfg.Sampler.Interval, sampler.DefaultInterval)},
		logger,
	)

	// Initialize analyzer with its report sinks and history
	history, err := analyzer.NewHistory(cfg.Analyzer.HistorySize)
	if err != nil {
		return fmt.Errorf("failed to initialize report history: %w", err)
	}

	sinks := []analyzer.Sink{analyzer.NewLogSink(logger)}
	if cfg.Analyzer.ConsoleReport {
		sinks = append(sinks, analyzer.NewConsoleSink())
	}

	behaviorAnalyzer := analyzer.New(
		sessions,
		sinks,
		history,
		clk,
		analyzer.Config{Interval: parseDuration(cfg.Analyzer.Interval, analyzer.DefaultInterval)},
		logger,
	)

	// Initialize daily log writer
	dayWriter, err := daylog.NewWriter(cfg.Daylog.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize daily log writer: %w", err)
	}

	var rollover *daylog.RolloverScheduler
	if cfg.Daylog.RolloverEnabled {
		rollover, err = daylog.NewRolloverScheduler(dayWriter, sessions, cfg.Daylog.RolloverBoundary, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize rollover scheduler: %w", err)
		}
		rollover.Start()
	}

	// Initialize metrics server
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Metrics.BindAddress, cfg.Metrics.Port)
		metricsServer = metrics.NewServer(metricsAddr, logger, map[string]http.Handler{
			"/reports": history.Handler(),
		})
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// Start background tasks. The sampler gets its own cancellation and a
	// WaitGroup so shutdown can wait for its final commit; the analyzer is
	// best-effort telemetry and is simply cancelled.
	samplerCtx, stopSampler := context.WithCancel(context.Background())
	analyzerCtx, stopAnalyzer := context.WithCancel(context.Background())

	var samplerDone sync.WaitGroup
	samplerDone.Add(1)
	go func() {
		defer samplerDone.Done()
		activitySampler.Run(samplerCtx)
	}()
	go behaviorAnalyzer.Run(analyzerCtx)

	logger.Info().Msg("focuswatch startup complete")

	// Notify systemd that we're ready
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	}

	// Wait for signals (shutdown or reload)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan

		if sig == syscall.SIGHUP {
			logger.Info().Msg("SIGHUP received, reloading classification table...")
			if err := classifier.Reload(); err != nil {
				logger.Error().Err(err).Msg("Failed to reload classification table")
			} else {
				logger.Info().Int("entries", classifier.Size()).Msg("Classification table reloaded")
			}
			continue
		}

		logger.Info().Msg("Shutdown signal received, gracefully stopping...")
		break
	}

	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	// Stop the sampler first and wait for its final commit so the closing
	// snapshot includes the span that was still open.
	stopSampler()
	samplerDone.Wait()

	stopAnalyzer()
	if rollover != nil {
		rollover.Stop()
	}
	if watcher != nil {
		watcher.Stop()
	}

	// Final flush with a snapshot taken after the sampler's last commit.
	if err := dayWriter.Flush(sessions.Snapshot(), clk.Now()); err != nil {
		logger.Error().Err(err).Msg("Final daily log flush failed")
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	logger.Info().Msg("focuswatch stopped")

	return nil
}

// buildClassifier constructs the classifier from the configured table
// file, optionally watched for changes. Without a table file everything
// classifies as Uncategorized.
func buildClassifier(cfg config.ClassifyConfig, logger zerolog.Logger) (*classify.Classifier, *classify.Watcher, error) {
	if cfg.TableFile == "" {
		logger.Warn().Msg("No classification table configured; all apps will be Uncategorized")
		return classify.New(nil, logger), nil, nil
	}

	classifier, err := classify.NewFromFile(cfg.TableFile, logger)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Watch {
		return classifier, nil, nil
	}

	watcher, err := classify.NewWatcher(classifier, logger)
	if err != nil {
		return nil, nil, err
	}
	return classifier, watcher, nil
}

// buildProvider returns the configured foreground provider. Without a
// provider command all samples degrade to Unknown, which keeps tracking
// alive but useless; warn loudly.
func buildProvider(cfg config.SamplerConfig, logger zerolog.Logger) sampler.Provider {
	if cfg.ProviderCommand == "" {
		logger.Warn().Msg("No provider command configured; all activity will be tracked as Unknown")
		return &sampler.StaticProvider{}
	}

	return sampler.NewCommandProvider(
		cfg.ProviderCommand,
		cfg.ProviderArgs,
		parseDuration(cfg.ProviderTimeout, 2*time.Second),
	)
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Default to console output; the analyzer's human-readable reports
	// share stdout with the daemon log.
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}

// parseDuration parses a duration string with a fallback
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
