package config

import (
	"os"
	"time"

	"estimahome/ml"

	"gopkg.in/yaml.v2"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Model    ModelConfig    `yaml:"model"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// DatabaseConfig locates the prediction history. An empty path disables it.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`        // rotated log file, stderr only when empty
	MaxSizeMB  int    `yaml:"max_size_mb"` // rotate after this size
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ModelConfig struct {
	ArtifactDir      string `yaml:"artifact_dir"`
	ml.ArtifactFiles `yaml:",inline"`
	Watch            bool `yaml:"watch"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 16,
		},
		Database: DatabaseConfig{
			Path: "estimahome.db",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Model: ModelConfig{
			ArtifactDir:   "artifacts",
			ArtifactFiles: ml.DefaultArtifactFiles(),
			Watch:         true,
		},
	}
}

// Load reads the YAML file at path over the defaults. With an empty path it
// tries the usual locations and falls back to the defaults when none exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, p := range []string{"config.yaml", "configs/estimahome.yaml"} {
			data, err := os.ReadFile(p)
			if err != nil {
				continue
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return cfg, err
			}
			applyDefaults(cfg)
			return cfg, nil
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = d.HTTP.Port
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = d.HTTP.Timeout
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = d.HTTP.AllowedOrigins
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		cfg.HTTP.MaxBodyBytes = d.HTTP.MaxBodyBytes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups < 0 {
		cfg.Log.MaxBackups = d.Log.MaxBackups
	}
	if cfg.Model.ArtifactDir == "" {
		cfg.Model.ArtifactDir = d.Model.ArtifactDir
	}
	if cfg.Model.Linear == "" {
		cfg.Model.Linear = d.Model.Linear
	}
	if cfg.Model.Scaler == "" {
		cfg.Model.Scaler = d.Model.Scaler
	}
	if cfg.Model.PowerTransformer == "" {
		cfg.Model.PowerTransformer = d.Model.PowerTransformer
	}
	if cfg.Model.SkewedColumns == "" {
		cfg.Model.SkewedColumns = d.Model.SkewedColumns
	}
}
