// Package projectconfig provides the ProjectConfig struct and loader for
// .luxeval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file Load searches for.
const FileName = ".luxeval.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultResamples       = 1000
	DefaultSeed      int64 = 12345
	DefaultConfidence      = 0.95
	DefaultWorkers         = 4

	DefaultNoiseModel = "normal-cdf"

	DefaultFormat = "table"
	DefaultAlpha  = 0.05

	DefaultCacheDir = ".luxeval-cache"
)

// Environment variables that override bootstrap.seed, in priority order.
const (
	EnvSeed          = "LUXEVAL_SEED"
	EnvSacrebleuSeed = "SACREBLEU_SEED"
)

// BootstrapConfig holds paired bootstrap parameters.
type BootstrapConfig struct {
	Resamples       int     `yaml:"resamples,omitempty"`
	Seed            *int64  `yaml:"seed,omitempty"`
	ConfidenceLevel float64 `yaml:"confidence_level,omitempty"`
	Workers         int     `yaml:"workers,omitempty"`
}

// NoiseModelConfig selects a noise model and its parameters.
type NoiseModelConfig struct {
	Kind   string         `yaml:"kind,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// ThresholdsConfig holds the threshold profile settings.
type ThresholdsConfig struct {
	File       string           `yaml:"file,omitempty"`
	NoiseModel NoiseModelConfig `yaml:"noise_model,omitempty"`
}

// ReportConfig holds output settings.
type ReportConfig struct {
	Format string  `yaml:"format,omitempty"`
	Alpha  float64 `yaml:"alpha,omitempty"`
	// LowerIsBetter holds glob patterns of metrics where a lower score
	// wins, in addition to the built-in ones (ter, metricx-*).
	LowerIsBetter []string `yaml:"lower_is_better,omitempty"`
}

// CacheConfig holds outcome cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .luxeval.yaml.
type ProjectConfig struct {
	Bootstrap  BootstrapConfig  `yaml:"bootstrap,omitempty"`
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
	Report     ReportConfig     `yaml:"report,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Bootstrap: BootstrapConfig{
			Resamples:       DefaultResamples,
			Seed:            int64Ptr(DefaultSeed),
			ConfidenceLevel: DefaultConfidence,
			Workers:         DefaultWorkers,
		},
		Thresholds: ThresholdsConfig{
			NoiseModel: NoiseModelConfig{Kind: DefaultNoiseModel},
		},
		Report: ReportConfig{
			Format: DefaultFormat,
			Alpha:  DefaultAlpha,
		},
		Cache: CacheConfig{
			Dir: DefaultCacheDir,
		},
	}
}

// SeedValue returns the configured seed.
func (c *ProjectConfig) SeedValue() int64 {
	if c.Bootstrap.Seed == nil {
		return DefaultSeed
	}
	return *c.Bootstrap.Seed
}

// Load finds .luxeval.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults and applies the
// seed environment override. A .env file in startDir is loaded first.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	if err := godotenv.Load(filepath.Join(startDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := New()

	data, err := findConfigFile(startDir)
	switch {
	case err == nil:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
	case errors.Is(err, os.ErrNotExist):
		// no file found → defaults
	default:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .luxeval.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

func applyEnv(cfg *ProjectConfig) error {
	for _, name := range []string{EnvSeed, EnvSacrebleuSeed} {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		cfg.Bootstrap.Seed = int64Ptr(seed)
		return nil
	}
	return nil
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Bootstrap
	if src.Bootstrap.Resamples != 0 {
		dst.Bootstrap.Resamples = src.Bootstrap.Resamples
	}
	if src.Bootstrap.Seed != nil {
		dst.Bootstrap.Seed = src.Bootstrap.Seed
	}
	if src.Bootstrap.ConfidenceLevel != 0 {
		dst.Bootstrap.ConfidenceLevel = src.Bootstrap.ConfidenceLevel
	}
	if src.Bootstrap.Workers != 0 {
		dst.Bootstrap.Workers = src.Bootstrap.Workers
	}

	// Thresholds
	if src.Thresholds.File != "" {
		dst.Thresholds.File = src.Thresholds.File
	}
	if src.Thresholds.NoiseModel.Kind != "" {
		dst.Thresholds.NoiseModel.Kind = src.Thresholds.NoiseModel.Kind
	}
	if src.Thresholds.NoiseModel.Params != nil {
		dst.Thresholds.NoiseModel.Params = src.Thresholds.NoiseModel.Params
	}

	// Report
	if src.Report.Format != "" {
		dst.Report.Format = src.Report.Format
	}
	if src.Report.Alpha != 0 {
		dst.Report.Alpha = src.Report.Alpha
	}
	if len(src.Report.LowerIsBetter) > 0 {
		dst.Report.LowerIsBetter = src.Report.LowerIsBetter
	}

	// Cache
	if src.Cache.Enabled {
		dst.Cache.Enabled = true
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
