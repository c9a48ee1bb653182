package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "focuswatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Missing file: defaults plus environment only.
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sampler.Interval != "5s" {
		t.Errorf("sampler interval = %q, want 5s", cfg.Sampler.Interval)
	}
	if cfg.Analyzer.Interval != "30s" {
		t.Errorf("analyzer interval = %q, want 30s", cfg.Analyzer.Interval)
	}
	if cfg.Daylog.Dir != "logs" {
		t.Errorf("daily log dir = %q, want logs", cfg.Daylog.Dir)
	}
	if cfg.Daylog.RolloverBoundary != "00:00" {
		t.Errorf("rollover boundary = %q, want 00:00", cfg.Daylog.RolloverBoundary)
	}
	if !cfg.Metrics.Enabled {
		t.Errorf("metrics should default to enabled")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
sampler:
  interval: 1s
  provider_command: xdotool-active-app
analyzer:
  interval: 10s
  console_report: false
daily_log:
  dir: /tmp/focuswatch-logs
  rollover_boundary: "04:00"
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sampler.Interval != "1s" {
		t.Errorf("sampler interval = %q, want 1s", cfg.Sampler.Interval)
	}
	if cfg.Sampler.ProviderCommand != "xdotool-active-app" {
		t.Errorf("provider command = %q", cfg.Sampler.ProviderCommand)
	}
	if cfg.Analyzer.ConsoleReport {
		t.Errorf("console report should be disabled")
	}
	if cfg.Daylog.RolloverBoundary != "04:00" {
		t.Errorf("rollover boundary = %q, want 04:00", cfg.Daylog.RolloverBoundary)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad sampler interval", "sampler:\n  interval: soon\n"},
		{"bad analyzer interval", "analyzer:\n  interval: never\n"},
		{"bad rollover boundary", "daily_log:\n  rollover_boundary: \"25:00\"\n"},
		{"bad metrics port", "metrics:\n  port: 123456\n"},
		{"watch without table file", "classification:\n  watch: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadClassification(t *testing.T) {
	path := writeConfig(t, `
classification:
  table_file: /etc/focuswatch/categories.yaml
  watch: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classify.TableFile != "/etc/focuswatch/categories.yaml" {
		t.Errorf("table file = %q", cfg.Classify.TableFile)
	}
	if !cfg.Classify.Watch {
		t.Errorf("watch should be enabled")
	}
}
