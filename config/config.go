// Package config loads the analyzer service configuration.
//
// Values come, in increasing priority, from built-in defaults, an optional
// YAML file, an optional .env file and PIPELINE_* environment variables.
// Nested keys map to env names by upper-casing and joining with "_":
// server.port becomes PIPELINE_SERVER_PORT.
//
// The loaded Config is treated as immutable and handed to constructors.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Title       string `yaml:"title" mapstructure:"title"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`

	Server   Server   `yaml:"server" mapstructure:"server"`
	CORS     CORS     `yaml:"cors" mapstructure:"cors"`
	Logging  Logging  `yaml:"logging" mapstructure:"logging"`
	Analysis Analysis `yaml:"analysis" mapstructure:"analysis"`
	Metrics  Metrics  `yaml:"metrics" mapstructure:"metrics"`
}

// Server holds HTTP listener settings.
type Server struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	BodyLimit       int           `yaml:"body_limit" mapstructure:"body_limit"` // bytes
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port the server listens on.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORS configures cross-origin access. An AllowOrigins entry of "*" admits
// every origin, and still works together with AllowCredentials.
type CORS struct {
	AllowOrigins     []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	AllowMethods     []string `yaml:"allow_methods" mapstructure:"allow_methods"`
	AllowHeaders     []string `yaml:"allow_headers" mapstructure:"allow_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
}

// AllowsAnyOrigin reports whether the wildcard origin is configured.
func (c CORS) AllowsAnyOrigin() bool {
	return len(c.AllowOrigins) == 0 || slices.Contains(c.AllowOrigins, "*")
}

// Logging contains logging configuration.
type Logging struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// Analysis bounds the pipelines the analyzer accepts. Zero means unlimited.
type Analysis struct {
	MaxNodes int `yaml:"max_nodes" mapstructure:"max_nodes"`
	MaxEdges int `yaml:"max_edges" mapstructure:"max_edges"`
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// Default returns the configuration used when nothing else is supplied:
// port 8000, any origin with credentials, metrics on.
func Default() Config {
	c := Config{
		Server: Server{
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		CORS:    CORS{AllowCredentials: true},
		Metrics: Metrics{Enabled: true},
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pipeline-analyzer"
	}
	if c.Title == "" {
		c.Title = "Pipeline Analyzer API"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BodyLimit == 0 {
		c.Server.BodyLimit = 4 << 20
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
	if len(c.CORS.AllowMethods) == 0 {
		c.CORS.AllowMethods = []string{"GET", "POST", "HEAD", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got: %d)", c.Server.Port)
	}
	if c.Server.BodyLimit < 0 {
		return fmt.Errorf("server.body_limit must not be negative (got: %d)", c.Server.BodyLimit)
	}
	if c.Analysis.MaxNodes < 0 || c.Analysis.MaxEdges < 0 {
		return fmt.Errorf("analysis limits must not be negative")
	}
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Logging.Level)
	}
	validFormats := []string{"json", "console"}
	if !slices.Contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Logging.Format)
	}
	return nil
}
