package sampler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/focuswatch/focuswatch/internal/classify"
	"github.com/focuswatch/focuswatch/internal/clock"
	"github.com/focuswatch/focuswatch/internal/metrics"
	"github.com/focuswatch/focuswatch/internal/store"
)

// DefaultInterval is the default polling period.
const DefaultInterval = 5 * time.Second

// Sampler polls the foreground provider on a fixed period, detects
// application switches, and commits completed focus spans into the
// session store. It is the store's sole writer and runs its own loop in
// one goroutine, so its commits are serialized by construction.
type Sampler struct {
	provider   Provider
	classifier *classify.Classifier
	sessions   *store.SessionStore
	clock      clock.Clock
	interval   time.Duration
	logger     zerolog.Logger

	// open span state, touched only from the Run goroutine
	openApp   string
	openSince time.Time
}

// Config holds sampler configuration
type Config struct {
	Interval time.Duration
}

// New creates a sampler.
func New(provider Provider, classifier *classify.Classifier, sessions *store.SessionStore, clk clock.Clock, config Config, logger zerolog.Logger) *Sampler {
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}

	return &Sampler{
		provider:   provider,
		classifier: classifier,
		sessions:   sessions,
		clock:      clk,
		interval:   config.Interval,
		logger:     logger.With().Str("component", "sampler").Logger(),
	}
}

// Run polls until ctx is cancelled, then commits whatever span is still
// open so no trailing foreground time is lost.
func (s *Sampler) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("Sampler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-ctx.Done():
			s.Finalize()
			s.logger.Info().Msg("Sampler stopped")
			return
		}
	}
}

// Tick performs one poll of the provider. A provider failure degrades to
// the Unknown identifier; tracking continues uninterrupted.
func (s *Sampler) Tick() {
	metrics.SamplerTicksTotal.Inc()

	app, err := s.provider.CurrentApp()
	if err != nil {
		metrics.ProviderErrorsTotal.Inc()
		s.logger.Debug().Err(err).Msg("Foreground provider unavailable, using Unknown")
		app = Unknown
	}

	if app == s.openApp {
		// Open span continues to accumulate; recorded at the next
		// switch or at shutdown.
		return
	}

	now := s.clock.Now()
	s.commitOpen(now)

	s.openApp = app
	s.openSince = now

	s.logger.Debug().Str("app", app).Msg("Foreground switch detected")
}

// Finalize commits the currently open span. Called once at shutdown,
// before the final log flush.
func (s *Sampler) Finalize() {
	s.commitOpen(s.clock.Now())
	s.openApp = ""
}

// commitOpen records the elapsed time of the open span, if any.
func (s *Sampler) commitOpen(now time.Time) {
	if s.openApp == "" {
		return
	}

	elapsed := now.Sub(s.openSince)
	category := s.classifier.Classify(s.openApp)
	s.sessions.Commit(s.openApp, category, elapsed)

	s.logger.Info().
		Str("app", s.openApp).
		Str("category", category).
		Dur("duration", elapsed).
		Msg("Focus session ended")
}
