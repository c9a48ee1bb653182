package daylog

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/focuswatch/focuswatch/internal/store"
)

// Snapshotter supplies the cumulative state to persist at each boundary.
type Snapshotter interface {
	Snapshot() store.Snapshot
}

// RolloverScheduler flushes the cumulative snapshot once per day at a
// configured local time-of-day boundary, so each calendar day gets a
// record even across long runs. Shutdown performs its own final flush;
// this scheduler only covers the day boundaries in between.
type RolloverScheduler struct {
	writer   *Writer
	sessions Snapshotter
	boundary time.Time // only hour and minute are used
	logger   zerolog.Logger
	stopChan chan struct{}
}

// NewRolloverScheduler creates a scheduler firing at boundary, given in
// HH:MM format.
func NewRolloverScheduler(writer *Writer, sessions Snapshotter, boundary string, logger zerolog.Logger) (*RolloverScheduler, error) {
	parsed, err := time.Parse("15:04", boundary)
	if err != nil {
		return nil, fmt.Errorf("invalid rollover boundary %q: %w", boundary, err)
	}

	return &RolloverScheduler{
		writer:   writer,
		sessions: sessions,
		boundary: parsed,
		logger:   logger.With().Str("component", "rollover-scheduler").Logger(),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the scheduler.
func (rs *RolloverScheduler) Start() {
	go rs.run()
	rs.logger.Info().
		Str("boundary", rs.boundary.Format("15:04")).
		Msg("Daily rollover scheduler started")
}

// Stop stops the scheduler.
func (rs *RolloverScheduler) Stop() {
	close(rs.stopChan)
	rs.logger.Info().Msg("Daily rollover scheduler stopped")
}

func (rs *RolloverScheduler) run() {
	for {
		next := NextBoundary(time.Now(), rs.boundary)
		wait := time.Until(next)

		rs.logger.Info().
			Time("next_rollover", next).
			Dur("wait_duration", wait).
			Msg("Scheduled next daily rollover")

		select {
		case <-time.After(wait):
			rs.flush(next)
		case <-rs.stopChan:
			return
		}
	}
}

// flush writes the day that just ended. A failure is logged and retried
// implicitly at the next boundary or at shutdown; the in-memory state is
// untouched either way.
func (rs *RolloverScheduler) flush(fire time.Time) {
	day := fire.Add(-time.Second)
	if err := rs.writer.Flush(rs.sessions.Snapshot(), day); err != nil {
		rs.logger.Error().Err(err).Msg("Daily rollover flush failed")
	}
}

// NextBoundary returns the first instant after now at which the
// time-of-day boundary occurs.
func NextBoundary(now time.Time, boundary time.Time) time.Time {
	next := time.Date(
		now.Year(), now.Month(), now.Day(),
		boundary.Hour(), boundary.Minute(), 0, 0,
		now.Location(),
	)

	if !next.After(now) {
		return next.AddDate(0, 0, 1)
	}

	return next
}
