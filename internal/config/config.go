package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/devws-io/devws/internal/types"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.yaml"
	// ConfigDirName is the directory under XDG_CONFIG_HOME where config is stored
	ConfigDirName = "devws"
	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "DEVWS_"
)

// HomeSyncItem describes one home-directory path synced by `devws home`
type HomeSyncItem struct {
	// Path is relative to the user's home directory
	Path string `yaml:"path"`
	// Type is "file" or "directory"
	Type string `yaml:"type"`
}

// Config holds application configuration. It is constructed once at the
// command entry point and passed by parameter into everything that needs it.
type Config struct {
	// Bucket is the object storage bucket holding synced files
	Bucket string `yaml:"bucket"`

	// StorageRoot is an optional key prefix inside the bucket
	StorageRoot string `yaml:"storageRoot"`

	// CandidatePatterns seed the manifest on `local init`; only candidates
	// already covered by the repository's ignore rules are written
	CandidatePatterns []string `yaml:"candidatePatterns"`

	// EnvSecretName is the secrets-store entry used by `devws env`
	EnvSecretName string `yaml:"envSecretName"`

	// EnvFile is the dotenv file backed up by `devws env`
	EnvFile string `yaml:"envFile"`

	// HomeSync lists home-directory items synced by `devws home`
	HomeSync []HomeSyncItem `yaml:"homeSync"`

	// DefaultOutputFormat is the default output format (json, table)
	DefaultOutputFormat types.OutputFormat `yaml:"defaultOutputFormat"`

	// LogLevel sets the logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `yaml:"logLevel"`

	// ColorOutput enables color in log output
	ColorOutput bool `yaml:"colorOutput"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CandidatePatterns:   []string{".env"},
		EnvSecretName:       "dotenv-backup",
		EnvFile:             "~/.env",
		DefaultOutputFormat: types.OutputFormatTable,
		LogLevel:            "normal",
		ColorOutput:         true,
	}
}

// Load loads configuration with precedence: env vars > config file > defaults.
// An empty path means the default XDG location; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if err := cfg.loadFromFile(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv(EnvPrefix + "STORAGE_ROOT"); v != "" {
		c.StorageRoot = v
	}
	if v := os.Getenv(EnvPrefix + "ENV_SECRET_NAME"); v != "" {
		c.EnvSecretName = v
	}
	if v := os.Getenv(EnvPrefix + "ENV_FILE"); v != "" {
		c.EnvFile = v
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT_FORMAT"); v != "" {
		c.DefaultOutputFormat = types.OutputFormat(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "COLOR_OUTPUT"); v != "" {
		c.ColorOutput = parseBool(v)
	}
}

// Save writes the configuration to the given path (default XDG location when
// empty), creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DefaultOutputFormat != types.OutputFormatJSON &&
		c.DefaultOutputFormat != types.OutputFormatTable {
		return fmt.Errorf("invalid output format: %s (must be 'json' or 'table')", c.DefaultOutputFormat)
	}

	validLogLevels := []string{"quiet", "normal", "verbose", "debug"}
	isValid := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	for _, item := range c.HomeSync {
		if item.Path == "" {
			return fmt.Errorf("homeSync item missing path")
		}
		if item.Type != "file" && item.Type != "directory" {
			return fmt.Errorf("homeSync item %q has invalid type %q (must be 'file' or 'directory')", item.Path, item.Type)
		}
		if filepath.IsAbs(item.Path) {
			return fmt.Errorf("homeSync item %q must be relative to the home directory", item.Path)
		}
	}

	return nil
}

// ExpandEnvFile resolves the configured dotenv path, expanding a leading ~
func (c *Config) ExpandEnvFile() (string, error) {
	return expandHome(c.EnvFile)
}

// DefaultConfigPath returns the XDG path of the config file
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, ConfigDirName, ConfigFileName)
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
