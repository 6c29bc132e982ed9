package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luki/metaldetect/internal/detector"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metaldetect.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
threshold: 650
delay: 250ms
log_file: /tmp/metal.csv
recent_limit: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Threshold != 650 {
		t.Errorf("threshold: got %d, want 650", cfg.Threshold)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Errorf("delay: got %v, want 250ms", cfg.Delay)
	}
	if cfg.LogFile != "/tmp/metal.csv" {
		t.Errorf("log_file: got %q", cfg.LogFile)
	}
	if cfg.RecentLimit != 25 {
		t.Errorf("recent_limit: got %d, want 25", cfg.RecentLimit)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "threshold: 700\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Threshold != 700 {
		t.Errorf("threshold: got %d, want 700", cfg.Threshold)
	}
	if cfg.Delay != detector.DefaultDelay {
		t.Errorf("default delay: got %v, want %v", cfg.Delay, detector.DefaultDelay)
	}
	if cfg.RecentLimit != DefaultRecentLimit {
		t.Errorf("default recent_limit: got %d, want %d", cfg.RecentLimit, DefaultRecentLimit)
	}
}

func TestLoadMissingFileIsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not be an error, got %v", err)
	}

	if cfg.Threshold != detector.DefaultThreshold {
		t.Errorf("threshold: got %d, want default %d", cfg.Threshold, detector.DefaultThreshold)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"threshold too high": "threshold: 2000\n",
		"negative threshold": "threshold: -1\n",
		"zero delay":         "delay: 0s\n",
		"empty log file":     "log_file: \"\"\n",
		"zero recent limit":  "recent_limit: 0\n",
		"invalid yaml":       "threshold: [\n",
	}

	for name, content := range cases {
		path := writeConfig(t, content)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}
