package daylog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/focuswatch/focuswatch/internal/metrics"
	"github.com/focuswatch/focuswatch/internal/store"
)

// Writer persists cumulative usage snapshots to one plain-text file per
// calendar date. Each flush overwrites the whole file for that date: the
// snapshot already represents the cumulative total, not a delta.
type Writer struct {
	dir    string
	logger zerolog.Logger
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string, logger zerolog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Writer{
		dir:    dir,
		logger: logger.With().Str("component", "daylog").Logger(),
	}, nil
}

// Flush writes the snapshot to the file for date. A write failure is
// non-fatal to the caller: the in-memory state is untouched and the next
// scheduled flush retries with fresher data.
func (w *Writer) Flush(snap store.Snapshot, date time.Time) error {
	day := date.Format("2006-01-02")
	path := filepath.Join(w.dir, day+".log")

	if err := writeFileAtomic(path, []byte(Render(snap, day))); err != nil {
		metrics.FlushesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write daily log %s: %w", path, err)
	}

	metrics.FlushesTotal.WithLabelValues("ok").Inc()
	w.logger.Info().
		Str("path", path).
		Int("apps", len(snap)).
		Msg("Daily log flushed")

	return nil
}

// Render produces the daily log content: a Date header followed by one
// line per application, sorted by name, with the duration truncated into
// whole minutes and remainder seconds.
func Render(snap store.Snapshot, day string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", day)
	for _, app := range snap.Apps() {
		total := int64(snap[app].Total.Seconds())
		fmt.Fprintf(&b, "%s,%dm %ds\n", app, total/60, total%60)
	}
	return b.String()
}

// writeFileAtomic writes via a temp file and rename so a failed write
// never leaves a truncated day file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".daylog-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
