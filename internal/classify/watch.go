package classify

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a Classifier whenever its table file changes on disk.
type Watcher struct {
	classifier *Classifier
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger
	stopChan   chan struct{}
}

// NewWatcher creates a watcher for the classifier's table file. The
// classifier must have been built with NewFromFile.
func NewWatcher(classifier *Classifier, logger zerolog.Logger) (*Watcher, error) {
	if classifier.path == "" {
		return nil, fmt.Errorf("classifier has no table file to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file itself so atomic
	// replace-by-rename (the common editor and deploy pattern) is seen.
	if err := fw.Add(filepath.Dir(classifier.path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(classifier.path), err)
	}

	w := &Watcher{
		classifier: classifier,
		watcher:    fw,
		logger:     logger.With().Str("component", "classifier-watcher").Logger(),
		stopChan:   make(chan struct{}),
	}

	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.run()
	w.logger.Info().Str("path", w.classifier.path).Msg("Watching classification table for changes")
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
	_ = w.watcher.Close()
}

func (w *Watcher) run() {
	target := filepath.Clean(w.classifier.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.classifier.Reload(); err != nil {
				// Keep the previous table; a half-written file will
				// trigger another event once the write completes.
				w.logger.Error().Err(err).Msg("Failed to reload classification table")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("File watcher error")

		case <-w.stopChan:
			return
		}
	}
}
