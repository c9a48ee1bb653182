package store

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/focuswatch/focuswatch/internal/metrics"
)

// SessionStore is the shared record of accumulated foreground usage per
// application. It is the only mutable shared state in the system: the
// sampler is its sole writer, the analyzer and log writer read it through
// Snapshot. Commit and Snapshot are linearizable with respect to each
// other; a snapshot always reflects whole commits, never half of one.
type SessionStore struct {
	sessions map[string]*AppSession
	started  time.Time
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewSessionStore creates an empty store. started records when tracking
// began, used for reporting only.
func NewSessionStore(started time.Time, logger zerolog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*AppSession),
		started:  started,
		logger:   logger.With().Str("component", "session-store").Logger(),
	}
}

// Commit records one completed focus span for app, creating the session on
// first commit. The span append and the total update happen in a single
// critical section.
func (s *SessionStore) Commit(app, category string, d time.Duration) {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	session, exists := s.sessions[app]
	if !exists {
		session = &AppSession{App: app, Category: category}
		s.sessions[app] = session
		metrics.TrackedApps.Set(float64(len(s.sessions)))
	}
	session.Spans = append(session.Spans, d)
	session.Total += d
	s.mu.Unlock()

	metrics.FocusSecondsTotal.WithLabelValues(app, category).Add(d.Seconds())
	metrics.SwitchesTotal.Inc()

	s.logger.Debug().
		Str("app", app).
		Str("category", category).
		Dur("span", d).
		Msg("Focus span committed")
}

// Snapshot returns a deep copy of the session table consistent with some
// serial order of the commits issued so far.
func (s *SessionStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot, len(s.sessions))
	for app, session := range s.sessions {
		snap[app] = AppSession{
			App:      session.App,
			Category: session.Category,
			Total:    session.Total,
			Spans:    slices.Clone(session.Spans),
		}
	}
	return snap
}

// Started returns when tracking began.
func (s *SessionStore) Started() time.Time {
	return s.started
}
