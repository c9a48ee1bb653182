package classify

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
)

// Uncategorized is the category assigned to application names that have no
// entry in the classification table.
const Uncategorized = "Uncategorized"

// Classifier maps exact application identifiers to usage categories.
// Lookups are lock-free; the whole table is swapped atomically on reload,
// so Classify is safe to call concurrently from any goroutine.
type Classifier struct {
	table  atomic.Pointer[map[string]string]
	path   string // optional table file, empty when the table is inline
	logger zerolog.Logger
}

// New creates a Classifier from an in-memory table.
func New(table map[string]string, logger zerolog.Logger) *Classifier {
	c := &Classifier{
		logger: logger.With().Str("component", "classifier").Logger(),
	}
	c.swap(table)
	return c
}

// NewFromFile creates a Classifier whose table is read from a YAML file
// with a top-level "categories" mapping. The file can be re-read with
// Reload.
func NewFromFile(path string, logger zerolog.Logger) (*Classifier, error) {
	c := &Classifier{
		path:   path,
		logger: logger.With().Str("component", "classifier").Logger(),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Classify returns the category for the given application name, or
// Uncategorized when the name is not in the table.
func (c *Classifier) Classify(appName string) string {
	table := *c.table.Load()
	if category, ok := table[appName]; ok {
		return category
	}
	return Uncategorized
}

// Size returns the number of entries in the current table.
func (c *Classifier) Size() int {
	return len(*c.table.Load())
}

// Reload re-reads the table file and swaps the table in one atomic step.
// In-flight Classify calls keep seeing the old table; the table in use is
// never partially updated. Reload on a Classifier built from an inline
// table is a no-op.
func (c *Classifier) Reload() error {
	if c.path == "" {
		return nil
	}

	table, err := loadTableFile(c.path)
	if err != nil {
		return err
	}

	c.swap(table)
	c.logger.Info().
		Str("path", c.path).
		Int("entries", len(table)).
		Msg("Classification table loaded")

	return nil
}

func (c *Classifier) swap(table map[string]string) {
	if table == nil {
		table = map[string]string{}
	}
	c.table.Store(&table)
}

// loadTableFile reads a category table from a YAML file:
//
//	categories:
//	  Chrome: Browsing
//	  Terminal: Development
func loadTableFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category table: %w", err)
	}

	var file struct {
		Categories map[string]string `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse category table %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("category table %s has no categories mapping", path)
	}

	return file.Categories, nil
}
