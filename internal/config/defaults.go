package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path: "static/swagger.json",
		},
		API: APIConfig{
			BaseURL: "http://localhost:5000",
		},
		Model: ModelConfig{
			BaseURL:  "http://localhost:11434/v1",
			Name:     "mistral",
			JSONMode: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"file"},
		},
	}
}
