package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the data directory.
const FileName = "vestcheck.yaml"

// Config represents the top-level vestcheck.yaml configuration.
type Config struct {
	Symbol    string          `yaml:"symbol"`
	Payroll   PayrollConfig   `yaml:"payroll"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Provider  ProviderConfig  `yaml:"provider"`
	Cache     CacheConfig     `yaml:"cache"`
}

// PayrollConfig locates the payroll data and names the RSU payslip lines.
type PayrollConfig struct {
	File      string   `yaml:"file"`
	Sold      []string `yaml:"sold"`
	Kept      []string `yaml:"kept"`
	Retention []string `yaml:"retention"`
}

// ReconcileConfig controls comparison thresholds.
type ReconcileConfig struct {
	Tolerance decimal.Decimal `yaml:"tolerance"`
}

// ProviderConfig describes the historical exchange rate service.
type ProviderConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// CacheBackend selects the durable store of the rate cache.
type CacheBackend string

const (
	CacheBackendJSON   CacheBackend = "json"
	CacheBackendSQLite CacheBackend = "sqlite"
)

// CacheConfig controls the persistent rate cache.
type CacheConfig struct {
	Backend CacheBackend `yaml:"backend"`
	Path    string       `yaml:"path"` // relative to the data directory
}

// Load reads a vestcheck.yaml file from disk. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault reads path if it exists and returns defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks values that have no usable zero value.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return errors.New("symbol is required")
	}
	if c.Payroll.File == "" {
		return errors.New("payroll.file is required")
	}
	if c.Reconcile.Tolerance.IsNegative() {
		return fmt.Errorf("reconcile.tolerance must not be negative, got %s", c.Reconcile.Tolerance)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout)
	}
	switch c.Cache.Backend {
	case CacheBackendJSON, CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default() *Config {
	return &Config{
		Symbol: "AFRM",
		Payroll: PayrollConfig{
			File:      "payroll.json",
			Sold:      []string{"RSU VENDIDAS", "RSU SOLD"},
			Kept:      []string{"RSU ESPECIE", "RSU KEPT"},
			Retention: []string{"ING. A CTA. RSU", "RSU RETENTION"},
		},
		Reconcile: ReconcileConfig{
			Tolerance: decimal.New(1, -2),
		},
		Provider: ProviderConfig{
			BaseURL:           "http://api.exchangerate.host/historical",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
		},
		Cache: CacheConfig{
			Backend: CacheBackendJSON,
			Path:    ".vestcheck-cache/rates.json",
		},
	}
}
