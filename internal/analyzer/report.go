package analyzer

import (
	"time"

	"github.com/google/uuid"

	"github.com/focuswatch/focuswatch/internal/store"
)

// BehaviorReport is the immutable result of one analyzer run.
type BehaviorReport struct {
	ID                 string        `json:"id"`
	TopApp             string        `json:"top_app"`
	TopAppDuration     time.Duration `json:"top_app_duration"`
	TotalFocus         time.Duration `json:"total_focus"`
	TotalSwitches      int           `json:"total_switches"`
	AvgFocusSeconds    float64       `json:"avg_focus_seconds"`
	FragmentationIndex float64       `json:"fragmentation_index"`
	Timestamp          time.Time     `json:"timestamp"`
}

// Analyze derives a report from one snapshot. An empty snapshot yields a
// neutral zero-valued report with no designated top app; that is not an
// error. Iteration is lexicographic by app name so ties break
// reproducibly (first app encountered wins).
func Analyze(snap store.Snapshot, now time.Time) BehaviorReport {
	report := BehaviorReport{
		ID:        uuid.NewString(),
		Timestamp: now,
	}

	for _, app := range snap.Apps() {
		session := snap[app]
		report.TotalFocus += session.Total
		report.TotalSwitches += len(session.Spans)
		if report.TopApp == "" || session.Total > report.TopAppDuration {
			report.TopApp = session.App
			report.TopAppDuration = session.Total
		}
	}

	if report.TotalSwitches > 0 {
		report.AvgFocusSeconds = report.TotalFocus.Seconds() / float64(report.TotalSwitches)
		// The index is kept exactly as the source material defines it,
		// even though it shrinks as switching grows.
		report.FragmentationIndex = 100 / float64(report.TotalSwitches)
	}

	return report
}
