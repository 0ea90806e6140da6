package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// Config captures the settings required to boot the debt scanner service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Generator GeneratorConfig `yaml:"generator"`
	Rules     RulesConfig     `yaml:"rules"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AnalysisConfig holds default tuning parameters for scan runs. Requests
// may override individual fields; the merged result is validated before
// the pipeline runs.
type AnalysisConfig struct {
	Contamination        float64 `yaml:"contamination"`
	HourlyRate           float64 `yaml:"hourlyRate"`
	WastedHoursThreshold float64 `yaml:"wastedHoursThreshold"`
	ErrorRateThreshold   float64 `yaml:"errorRateThreshold"`
	SLALevel             string  `yaml:"slaLevel"`
	SLALatencyMs         float64 `yaml:"slaLatencyMs"`
	CapOutliers          bool    `yaml:"capOutliers"`
}

// GeneratorConfig controls the synthetic log producer.
type GeneratorConfig struct {
	Rows      int     `yaml:"rows"`
	DebtRatio float64 `yaml:"debtRatio"`
	Seed      int64   `yaml:"seed"`
}

// RulesConfig points at an optional strategy rule-pack override.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DEBTSCAN_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, utils.NewAppError("config.Load", fmt.Sprintf("config file %s not found", path), err)
			}
			return nil, utils.NewAppError("config.Load", "read config file", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, utils.NewAppError("config.Load", "parse config file", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Options converts the analysis defaults into pipeline options.
func (c *Config) Options() models.ScanOptions {
	return models.ScanOptions{
		Contamination:        c.Analysis.Contamination,
		HourlyRate:           c.Analysis.HourlyRate,
		WastedHoursThreshold: c.Analysis.WastedHoursThreshold,
		ErrorRateThreshold:   c.Analysis.ErrorRateThreshold,
		SLALevel:             c.Analysis.SLALevel,
		SLALatencyMs:         c.Analysis.SLALatencyMs,
		CapOutliers:          c.Analysis.CapOutliers,
	}
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Analysis: AnalysisConfig{
			Contamination:        0.05,
			HourlyRate:           60,
			WastedHoursThreshold: 5.0,
			ErrorRateThreshold:   1.0,
			SLALevel:             "standard",
			SLALatencyMs:         500,
			CapOutliers:          true,
		},
		Generator: GeneratorConfig{
			Rows:      1000,
			DebtRatio: 0.05,
			Seed:      42,
		},
		Rules: RulesConfig{},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEBTSCAN_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("DEBTSCAN_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("DEBTSCAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DEBTSCAN_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("DEBTSCAN_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("DEBTSCAN_CONTAMINATION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.Contamination = f
		}
	}
	if v := os.Getenv("DEBTSCAN_HOURLY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.HourlyRate = f
		}
	}
	if v := os.Getenv("DEBTSCAN_SLA_LEVEL"); v != "" {
		cfg.Analysis.SLALevel = v
	}
	if v := os.Getenv("DEBTSCAN_SLA_LATENCY_MS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.SLALatencyMs = f
		}
	}
	if v := os.Getenv("DEBTSCAN_CAP_OUTLIERS"); v != "" {
		cfg.Analysis.CapOutliers = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("DEBTSCAN_GENERATOR_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.Rows = n
		}
	}
	if v := os.Getenv("DEBTSCAN_GENERATOR_DEBT_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Generator.DebtRatio = f
		}
	}
	if v := os.Getenv("DEBTSCAN_GENERATOR_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Generator.Seed = n
		}
	}
	if v := os.Getenv("DEBTSCAN_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("DEBTSCAN_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
}
