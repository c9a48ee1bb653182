package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/focuswatch/focuswatch/internal/store"
)

func spans(seconds ...int) ([]time.Duration, time.Duration) {
	out := make([]time.Duration, len(seconds))
	var total time.Duration
	for i, s := range seconds {
		out[i] = time.Duration(s) * time.Second
		total += out[i]
	}
	return out, total
}

func session(app, category string, spanSeconds ...int) store.AppSession {
	s, total := spans(spanSeconds...)
	return store.AppSession{App: app, Category: category, Total: total, Spans: s}
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	report := Analyze(store.Snapshot{}, time.Now())

	if report.TopApp != "" {
		t.Errorf("TopApp = %q, want empty", report.TopApp)
	}
	if report.TotalSwitches != 0 {
		t.Errorf("TotalSwitches = %d, want 0", report.TotalSwitches)
	}
	if report.AvgFocusSeconds != 0 {
		t.Errorf("AvgFocusSeconds = %v, want 0", report.AvgFocusSeconds)
	}
	if report.FragmentationIndex != 0 {
		t.Errorf("FragmentationIndex = %v, want 0", report.FragmentationIndex)
	}
}

func TestAnalyzeDerivedMetrics(t *testing.T) {
	// Chrome: 125s over 3 spans; Terminal: 40s over 1 span.
	snap := store.Snapshot{
		"Chrome":   session("Chrome", "Browsing", 60, 60, 5),
		"Terminal": session("Terminal", "Development", 40),
	}

	report := Analyze(snap, time.Now())

	if report.TopApp != "Chrome" {
		t.Errorf("TopApp = %q, want Chrome", report.TopApp)
	}
	if report.TopAppDuration != 125*time.Second {
		t.Errorf("TopAppDuration = %v, want 125s", report.TopAppDuration)
	}
	if report.TotalFocus != 165*time.Second {
		t.Errorf("TotalFocus = %v, want 165s", report.TotalFocus)
	}
	if report.TotalSwitches != 4 {
		t.Errorf("TotalSwitches = %d, want 4", report.TotalSwitches)
	}
	if math.Abs(report.AvgFocusSeconds-41.25) > 1e-9 {
		t.Errorf("AvgFocusSeconds = %v, want 41.25", report.AvgFocusSeconds)
	}
	if math.Abs(report.FragmentationIndex-25) > 1e-9 {
		t.Errorf("FragmentationIndex = %v, want 25", report.FragmentationIndex)
	}
}

func TestAnalyzeTopAppTieBreak(t *testing.T) {
	// Equal totals: the lexicographically first app wins.
	snap := store.Snapshot{
		"Zed":   session("Zed", "Development", 30),
		"Emacs": session("Emacs", "Development", 30),
	}

	report := Analyze(snap, time.Now())
	if report.TopApp != "Emacs" {
		t.Errorf("TopApp = %q, want Emacs (deterministic tie-break)", report.TopApp)
	}
}

func TestAnalyzeAllZeroDurations(t *testing.T) {
	// Zero-length spans still count as switches; no division fault.
	snap := store.Snapshot{
		"Chrome": session("Chrome", "Browsing", 0, 0),
	}

	report := Analyze(snap, time.Now())
	if report.TotalSwitches != 2 {
		t.Errorf("TotalSwitches = %d, want 2", report.TotalSwitches)
	}
	if report.AvgFocusSeconds != 0 {
		t.Errorf("AvgFocusSeconds = %v, want 0", report.AvgFocusSeconds)
	}
	if report.FragmentationIndex != 50 {
		t.Errorf("FragmentationIndex = %v, want 50", report.FragmentationIndex)
	}
	if report.TopApp != "Chrome" {
		t.Errorf("TopApp = %q, want Chrome", report.TopApp)
	}
}

func TestAnalyzeFragmentationShrinksWithSwitching(t *testing.T) {
	// The index is defined as 100/switches and kept that way: more
	// switching yields a smaller value.
	few := Analyze(store.Snapshot{"A": session("A", "cat", 10, 10)}, time.Now())
	many := Analyze(store.Snapshot{"A": session("A", "cat", 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)}, time.Now())

	if many.FragmentationIndex >= few.FragmentationIndex {
		t.Errorf("fragmentation with 10 switches (%v) should be below 2 switches (%v)",
			many.FragmentationIndex, few.FragmentationIndex)
	}
}

func TestHistoryBoundAndOrder(t *testing.T) {
	history, err := NewHistory(3)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		history.Add(Analyze(store.Snapshot{}, base.Add(time.Duration(i)*time.Minute)))
	}

	reports := history.Reports()
	if len(reports) != 3 {
		t.Fatalf("retained %d reports, want 3", len(reports))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i].Timestamp.After(reports[i-1].Timestamp) {
			t.Errorf("reports not newest-first at index %d", i)
		}
	}
	if !reports[0].Timestamp.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest report timestamp = %v, want %v", reports[0].Timestamp, base.Add(4*time.Minute))
	}
}
