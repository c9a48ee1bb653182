package store

import (
	"sort"
	"time"
)

// AppSession is the accumulated foreground record for one application.
// Total always equals the sum of Spans; Commit maintains both under one
// critical section so no reader can observe them out of step.
type AppSession struct {
	App      string
	Category string
	Total    time.Duration
	Spans    []time.Duration
}

// Snapshot is an immutable point-in-time copy of the session table. It is
// safe to read without synchronization and never changes after it is
// returned, even while commits continue concurrently.
type Snapshot map[string]AppSession

// Apps returns the application names in the snapshot sorted
// lexicographically, for deterministic iteration.
func (s Snapshot) Apps() []string {
	apps := make([]string, 0, len(s))
	for app := range s {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}
