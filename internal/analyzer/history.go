package analyzer

import (
	"encoding/json"
	"net/http"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHistorySize bounds how many recent reports are kept for the
// /reports endpoint.
const DefaultHistorySize = 64

// History holds the most recent reports, evicting the oldest once the
// bound is reached. Safe for concurrent use.
type History struct {
	cache *lru.Cache[string, BehaviorReport]
}

// NewHistory creates a bounded report history.
func NewHistory(size int) (*History, error) {
	if size <= 0 {
		size = DefaultHistorySize
	}
	cache, err := lru.New[string, BehaviorReport](size)
	if err != nil {
		return nil, err
	}
	return &History{cache: cache}, nil
}

// Add records a report.
func (h *History) Add(report BehaviorReport) {
	h.cache.Add(report.ID, report)
}

// Reports returns the retained reports, newest first.
func (h *History) Reports() []BehaviorReport {
	reports := make([]BehaviorReport, 0, h.cache.Len())
	for _, id := range h.cache.Keys() {
		if report, ok := h.cache.Peek(id); ok {
			reports = append(reports, report)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
	return reports
}

// Handler serves the retained reports as JSON.
func (h *History) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.Reports()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
