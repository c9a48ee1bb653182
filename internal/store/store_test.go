package store

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"pgregory.net/rapid"
)

func newTestStore() *SessionStore {
	return NewSessionStore(time.Now(), zerolog.Nop())
}

func TestCommitCreatesSession(t *testing.T) {
	s := newTestStore()

	s.Commit("Chrome", "Browsing", 10*time.Second)
	s.Commit("Chrome", "Browsing", 5*time.Second)
	s.Commit("Terminal", "Development", 40*time.Second)

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(snap))
	}

	chrome := snap["Chrome"]
	if chrome.Total != 15*time.Second {
		t.Errorf("Chrome total = %v, want 15s", chrome.Total)
	}
	if len(chrome.Spans) != 2 {
		t.Errorf("Chrome spans = %d, want 2", len(chrome.Spans))
	}
	if chrome.Category != "Browsing" {
		t.Errorf("Chrome category = %q, want Browsing", chrome.Category)
	}
}

func TestCommitClampsNegativeDuration(t *testing.T) {
	s := newTestStore()

	s.Commit("Chrome", "Browsing", -3*time.Second)

	snap := s.Snapshot()
	if got := snap["Chrome"].Total; got != 0 {
		t.Errorf("total = %v, want 0", got)
	}
	if got := len(snap["Chrome"].Spans); got != 1 {
		t.Errorf("spans = %d, want 1", got)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	s := newTestStore()
	s.Commit("Chrome", "Browsing", 10*time.Second)
	s.Commit("Terminal", "Development", 40*time.Second)

	first := s.Snapshot()
	second := s.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two snapshots without intervening commits differ:\n%v\n%v", first, second)
	}
}

func TestSnapshotImmutableAfterReturn(t *testing.T) {
	s := newTestStore()
	s.Commit("Chrome", "Browsing", 10*time.Second)

	snap := s.Snapshot()
	s.Commit("Chrome", "Browsing", 90*time.Second)

	if got := snap["Chrome"].Total; got != 10*time.Second {
		t.Errorf("snapshot changed after later commit: total = %v, want 10s", got)
	}
	if got := len(snap["Chrome"].Spans); got != 1 {
		t.Errorf("snapshot changed after later commit: spans = %d, want 1", got)
	}
}

func TestSnapshotAppsSorted(t *testing.T) {
	s := newTestStore()
	s.Commit("Terminal", "Development", time.Second)
	s.Commit("Chrome", "Browsing", time.Second)
	s.Commit("Slack", "Communication", time.Second)

	apps := s.Snapshot().Apps()
	want := []string{"Chrome", "Slack", "Terminal"}
	if !reflect.DeepEqual(apps, want) {
		t.Errorf("Apps() = %v, want %v", apps, want)
	}
}

// checkInvariant fails the test if any session's total disagrees with the
// sum of its spans.
func checkInvariant(t interface{ Fatalf(string, ...any) }, snap Snapshot) {
	for app, session := range snap {
		var sum time.Duration
		for _, span := range session.Spans {
			sum += span
		}
		if sum != session.Total {
			t.Fatalf("invariant violated for %s: total=%v sum(spans)=%v", app, session.Total, sum)
		}
	}
}

func TestSnapshotInvariantUnderConcurrency(t *testing.T) {
	s := newTestStore()

	apps := []string{"Chrome", "Terminal", "Slack", "Unknown"}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Single writer, per the ownership model.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			app := apps[i%len(apps)]
			s.Commit(app, "cat", time.Duration(i%17)*time.Second)
		}
		close(stop)
	}()

	// Many concurrent readers.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				checkInvariant(t, s.Snapshot())
				select {
				case <-stop:
					return
				default:
				}
			}
		}()
	}

	wg.Wait()
	checkInvariant(t, s.Snapshot())
}

func TestSnapshotInvariantProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newTestStore()

		numOps := rapid.IntRange(1, 60).Draw(rt, "num_ops")
		var wall time.Duration

		for i := 0; i < numOps; i++ {
			if rapid.Bool().Draw(rt, "snapshot_now") {
				checkInvariant(rt, s.Snapshot())
				continue
			}

			app := rapid.SampledFrom([]string{"A", "B", "C"}).Draw(rt, "app")
			span := time.Duration(rapid.Int64Range(0, 3600).Draw(rt, "span_sec")) * time.Second
			s.Commit(app, "cat", span)
			wall += span
		}

		snap := s.Snapshot()
		checkInvariant(rt, snap)

		// Committed time never exceeds the wall-clock time that produced it.
		var total time.Duration
		for _, session := range snap {
			total += session.Total
		}
		if total > wall {
			rt.Fatalf("total committed %v exceeds elapsed %v", total, wall)
		}
	})
}
