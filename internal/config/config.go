package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	API     APIConfig     `toml:"api"`
	Model   ModelConfig   `toml:"model"`
	Logging LoggingConfig `toml:"logging"`
}

// CatalogConfig locates the API description document.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// APIConfig contains settings for the downstream REST API.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"` // Go duration; empty or "0" means no timeout
}

// ModelConfig contains settings for the language model endpoint.
type ModelConfig struct {
	BaseURL  string `toml:"base_url"` // OpenAI-compatible endpoint, e.g. Ollama's /v1
	Name     string `toml:"name"`
	APIKey   string `toml:"api_key"`
	JSONMode bool   `toml:"json_mode"` // ask the endpoint for a JSON object when routing
	Timeout  string `toml:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"` // "console" (stderr), "file"
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// TimeoutDuration parses the API timeout. Invalid values yield zero.
func (c APIConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout)
}

// TimeoutDuration parses the model timeout. Invalid values yield zero.
func (c ModelConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies APICHAT_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if path := os.Getenv("APICHAT_CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}
	if url := os.Getenv("APICHAT_API_URL"); url != "" {
		config.API.BaseURL = url
	}
	if timeout := os.Getenv("APICHAT_API_TIMEOUT"); timeout != "" {
		config.API.Timeout = timeout
	}
	if url := os.Getenv("APICHAT_MODEL_URL"); url != "" {
		config.Model.BaseURL = url
	}
	if name := os.Getenv("APICHAT_MODEL"); name != "" {
		config.Model.Name = name
	}
	if key := os.Getenv("APICHAT_MODEL_API_KEY"); key != "" {
		config.Model.APIKey = key
	}
	if jsonMode := os.Getenv("APICHAT_MODEL_JSON_MODE"); jsonMode != "" {
		if b, err := strconv.ParseBool(jsonMode); err == nil {
			config.Model.JSONMode = b
		}
	}
	if level := os.Getenv("APICHAT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if outputs := os.Getenv("APICHAT_LOG_OUTPUTS"); outputs != "" {
		config.Logging.Outputs = splitList(outputs)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, catalogPath, model string) {
	if catalogPath != "" {
		config.Catalog.Path = catalogPath
	}
	if model != "" {
		config.Model.Name = model
	}
}

// Validate returns a list of human-readable configuration issues.
func (c *Config) Validate() []string {
	var issues []string
	if strings.TrimSpace(c.Catalog.Path) == "" {
		issues = append(issues, "catalog.path is required (APICHAT_CATALOG_PATH)")
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		issues = append(issues, "api.base_url is required (APICHAT_API_URL)")
	}
	if strings.TrimSpace(c.Model.BaseURL) == "" {
		issues = append(issues, "model.base_url is required (APICHAT_MODEL_URL)")
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		issues = append(issues, "model.name is required (APICHAT_MODEL)")
	}
	for _, field := range []struct{ name, value string }{
		{"api.timeout", c.API.Timeout},
		{"model.timeout", c.Model.Timeout},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			issues = append(issues, fmt.Sprintf("%s %q is not a valid duration", field.name, field.value))
		}
	}
	return issues
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
