package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ServerHost != "0.0.0.0" || c.ServerPort != 5000 {
		t.Fatalf("server defaults = %s:%d", c.ServerHost, c.ServerPort)
	}
	if c.CacheMaxAgeHours != 24 {
		t.Fatalf("CacheMaxAgeHours = %d, want 24", c.CacheMaxAgeHours)
	}
	if c.DefaultTopN != 10 {
		t.Fatalf("DefaultTopN = %d, want 10", c.DefaultTopN)
	}
	if c.RawCSVPath == "" || c.CleanedCSVPath == "" {
		t.Fatalf("data paths missing: %+v", c)
	}
	if c.Addr() != "0.0.0.0:5000" {
		t.Fatalf("Addr() = %q", c.Addr())
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CITYLENS_SERVER_PORT", "8080")
	t.Setenv("CITYLENS_CACHE_DIR", "/tmp/citylens-cache")

	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ServerPort != 8080 {
		t.Fatalf("ServerPort = %d, want env override 8080", c.ServerPort)
	}
	if c.CacheDir != "/tmp/citylens-cache" {
		t.Fatalf("CacheDir = %q, want env override", c.CacheDir)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	want := &Global{
		RawCSVPath:       "in.csv",
		CleanedCSVPath:   "out.csv",
		CacheDir:         "cache",
		CacheMaxAgeHours: 6,
		ServerHost:       "127.0.0.1",
		ServerPort:       9000,
		DefaultTopN:      5,
	}
	if err := Save(want, cfgFile); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(cfgFile); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	got, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ServerHost != "127.0.0.1" || got.ServerPort != 9000 {
		t.Fatalf("server = %s:%d, want saved values", got.ServerHost, got.ServerPort)
	}
	if got.CacheMaxAgeHours != 6 || got.DefaultTopN != 5 {
		t.Fatalf("numbers = %d/%d, want 6/5", got.CacheMaxAgeHours, got.DefaultTopN)
	}
	if got.RawCSVPath != "in.csv" || got.CleanedCSVPath != "out.csv" {
		t.Fatalf("paths = %q/%q, want saved values", got.RawCSVPath, got.CleanedCSVPath)
	}
}
