package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":8080" || cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Analysis.Contamination != 0.05 || cfg.Analysis.HourlyRate != 60 {
		t.Fatalf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.Analysis.SLALevel != "standard" || !cfg.Analysis.CapOutliers {
		t.Fatalf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.Generator.Rows != 1000 || cfg.Generator.Seed != 42 {
		t.Fatalf("unexpected generator defaults: %+v", cfg.Generator)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `server:
  address: ":9090"
  gracefulTimeout: 5s
logging:
  level: debug
  json: true
analysis:
  contamination: 0.1
  slaLevel: aggressive
generator:
  rows: 250
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected address override, got %s", cfg.Server.Address)
	}
	if cfg.Server.GracefulTimeout != 5*time.Second {
		t.Fatalf("expected 5s graceful timeout, got %v", cfg.Server.GracefulTimeout)
	}
	if !cfg.Logging.JSON || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Analysis.Contamination != 0.1 || cfg.Analysis.SLALevel != "aggressive" {
		t.Fatalf("unexpected analysis: %+v", cfg.Analysis)
	}
	if cfg.Generator.Rows != 250 {
		t.Fatalf("expected generator rows override, got %d", cfg.Generator.Rows)
	}
	// Untouched fields keep their defaults.
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("expected default metrics address, got %s", cfg.Server.MetricsAddress)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a named but missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEBTSCAN_SERVER_ADDRESS", ":7070")
	t.Setenv("DEBTSCAN_LOG_FORMAT", "json")
	t.Setenv("DEBTSCAN_CONTAMINATION", "0.12")
	t.Setenv("DEBTSCAN_SLA_LEVEL", "relaxed")
	t.Setenv("DEBTSCAN_CAP_OUTLIERS", "false")
	t.Setenv("DEBTSCAN_GENERATOR_SEED", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Fatalf("expected env address, got %s", cfg.Server.Address)
	}
	if !cfg.Logging.JSON {
		t.Fatal("expected JSON logging from env")
	}
	if cfg.Analysis.Contamination != 0.12 || cfg.Analysis.SLALevel != "relaxed" {
		t.Fatalf("unexpected analysis: %+v", cfg.Analysis)
	}
	if cfg.Analysis.CapOutliers {
		t.Fatal("expected cap disabled via env")
	}
	if cfg.Generator.Seed != 7 {
		t.Fatalf("expected seed 7, got %d", cfg.Generator.Seed)
	}
}

func TestOptions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	opts := cfg.Options()
	if ok, msg := opts.Validate(); !ok {
		t.Fatalf("default options must validate: %s", msg)
	}
	if opts.Contamination != cfg.Analysis.Contamination || opts.SLALatencyMs != cfg.Analysis.SLALatencyMs {
		t.Fatalf("options do not mirror analysis config: %+v", opts)
	}
}
