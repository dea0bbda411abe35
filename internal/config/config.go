// Package config provides YAML-based configuration with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. DOCSIM_SERVER_PORT.
const EnvPrefix = "DOCSIM"

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Ingest  IngestConfig  `mapstructure:"ingest" yaml:"ingest"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	BindAddress     string        `mapstructure:"bind_address" yaml:"bind_address"`
	EnableCORS      bool          `mapstructure:"enable_cors" yaml:"enable_cors"`
	AllowOrigins    string        `mapstructure:"allow_origins" yaml:"allow_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	BodyLimit       string        `mapstructure:"body_limit" yaml:"body_limit"`
}

// IngestConfig contains the simulation parameters
type IngestConfig struct {
	CompletionDelay time.Duration `mapstructure:"completion_delay" yaml:"completion_delay"`
	ConfidenceMin   float64       `mapstructure:"confidence_min" yaml:"confidence_min"`
	ConfidenceMax   float64       `mapstructure:"confidence_max" yaml:"confidence_max"`
	FailureRate     float64       `mapstructure:"failure_rate" yaml:"failure_rate"`
	SeedDocuments   bool          `mapstructure:"seed_documents" yaml:"seed_documents"`
}

// CatalogConfig points at the dashboard display data. Empty means built-in.
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level          string `mapstructure:"level" yaml:"level"`
	RequestLogging bool   `mapstructure:"request_logging" yaml:"request_logging"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            8089,
			BindAddress:     "0.0.0.0",
			EnableCORS:      true,
			AllowOrigins:    "*",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "50M",
		},
		Ingest: IngestConfig{
			CompletionDelay: 3 * time.Second,
			ConfidenceMin:   90,
			ConfidenceMax:   100,
			FailureRate:     0,
			SeedDocuments:   true,
		},
		Log: LogConfig{
			Level:          "info",
			RequestLogging: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is created
// with the defaults. Environment variables override file values.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := DefaultConfig().Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromEnv builds a configuration from defaults and environment variables only.
func LoadFromEnv() (*AppConfig, error) {
	config := &AppConfig{}
	if err := newViper().Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newViper registers every default so that environment overrides apply to
// keys missing from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.bind_address", d.Server.BindAddress)
	v.SetDefault("server.enable_cors", d.Server.EnableCORS)
	v.SetDefault("server.allow_origins", d.Server.AllowOrigins)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	v.SetDefault("ingest.completion_delay", d.Ingest.CompletionDelay)
	v.SetDefault("ingest.confidence_min", d.Ingest.ConfidenceMin)
	v.SetDefault("ingest.confidence_max", d.Ingest.ConfidenceMax)
	v.SetDefault("ingest.failure_rate", d.Ingest.FailureRate)
	v.SetDefault("ingest.seed_documents", d.Ingest.SeedDocuments)

	v.SetDefault("catalog.path", d.Catalog.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.request_logging", d.Log.RequestLogging)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	return v
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Document simulator configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// serverFile and ingestFile are the on-disk shapes of ServerConfig and
// IngestConfig. Durations are written as strings such as "3s"; yaml.v3
// would otherwise emit integer nanoseconds.
type serverFile struct {
	Port            int    `yaml:"port"`
	BindAddress     string `yaml:"bind_address"`
	EnableCORS      bool   `yaml:"enable_cors"`
	AllowOrigins    string `yaml:"allow_origins"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	BodyLimit       string `yaml:"body_limit"`
}

type ingestFile struct {
	CompletionDelay string  `yaml:"completion_delay"`
	ConfidenceMin   float64 `yaml:"confidence_min"`
	ConfidenceMax   float64 `yaml:"confidence_max"`
	FailureRate     float64 `yaml:"failure_rate"`
	SeedDocuments   bool    `yaml:"seed_documents"`
}

// MarshalYAML implements yaml.Marshaler.
func (s ServerConfig) MarshalYAML() (any, error) {
	return serverFile{
		Port:            s.Port,
		BindAddress:     s.BindAddress,
		EnableCORS:      s.EnableCORS,
		AllowOrigins:    s.AllowOrigins,
		ReadTimeout:     s.ReadTimeout.String(),
		WriteTimeout:    s.WriteTimeout.String(),
		ShutdownTimeout: s.ShutdownTimeout.String(),
		BodyLimit:       s.BodyLimit,
	}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (c IngestConfig) MarshalYAML() (any, error) {
	return ingestFile{
		CompletionDelay: c.CompletionDelay.String(),
		ConfidenceMin:   c.ConfidenceMin,
		ConfidenceMax:   c.ConfidenceMax,
		FailureRate:     c.FailureRate,
		SeedDocuments:   c.SeedDocuments,
	}, nil
}

// Validate checks value ranges that would otherwise fail at startup.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Ingest.FailureRate < 0 || c.Ingest.FailureRate > 1 {
		return fmt.Errorf("failure rate must be within [0, 1]: %g", c.Ingest.FailureRate)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}
	return nil
}

// resolvePaths converts a relative catalog path to absolute based on the config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Catalog.Path != "" && !filepath.IsAbs(c.Catalog.Path) {
		c.Catalog.Path = filepath.Join(configDir, c.Catalog.Path)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}
