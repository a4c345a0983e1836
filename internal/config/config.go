// Package config provides configuration management for Brahma. Settings come
// from three layers, later layers winning: built-in defaults, an optional
// YAML file, and environment variables with the BRAHMA_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Brahma application.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Speech  SpeechConfig  `yaml:"speech"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // default: 8686
	Host string `yaml:"host"` // default: 127.0.0.1
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	// Engine selects the backend: sqlite (default) or postgres.
	Engine string `yaml:"engine"`

	// DataPath is the SQLite database path (default: ./data/brahma.db).
	DataPath string `yaml:"data_path"`

	// PostgresDSN is the PostgreSQL connection string, used when Engine is
	// postgres.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider          string  `yaml:"provider"`            // ollama (default) or openai
	OllamaURL         string  `yaml:"ollama_url"`          // default: http://localhost:11434
	OllamaModel       string  `yaml:"ollama_model"`        // default: qwen2.5:7b
	OpenAIAPIKey      string  `yaml:"openai_api_key"`      // required for openai
	OpenAIModel       string  `yaml:"openai_model"`        // default: gpt-4o-mini
	OpenAIBaseURL     string  `yaml:"openai_base_url"`     // default: https://api.openai.com
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 2
}

// SpeechConfig contains text-to-speech configuration. Synthesis is disabled
// unless a service URL is set.
type SpeechConfig struct {
	URL   string `yaml:"url"`
	Voice string `yaml:"voice"` // default voice when the caller selects none
}

// Load builds the configuration. When path is non-empty the YAML file there
// is applied over the defaults; environment variables override both.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8686,
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			Engine:   "sqlite",
			DataPath: "./data/brahma.db",
		},
		LLM: LLMConfig{
			Provider:          "ollama",
			OllamaURL:         "http://localhost:11434",
			OllamaModel:       "qwen2.5:7b",
			OpenAIModel:       "gpt-4o-mini",
			RequestsPerSecond: 2,
		},
		Speech: SpeechConfig{},
	}
}

// applyEnv overrides config fields from BRAHMA_-prefixed environment
// variables. An unset variable leaves the current value untouched.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("BRAHMA_PORT", c.Server.Port)
	c.Server.Host = getEnv("BRAHMA_HOST", c.Server.Host)

	c.Storage.Engine = getEnv("BRAHMA_STORAGE_ENGINE", c.Storage.Engine)
	c.Storage.DataPath = getEnv("BRAHMA_DATA_PATH", c.Storage.DataPath)
	c.Storage.PostgresDSN = getEnv("BRAHMA_POSTGRES_DSN", c.Storage.PostgresDSN)

	c.LLM.Provider = getEnv("BRAHMA_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.OllamaURL = getEnv("BRAHMA_OLLAMA_URL", c.LLM.OllamaURL)
	c.LLM.OllamaModel = getEnv("BRAHMA_OLLAMA_MODEL", c.LLM.OllamaModel)
	c.LLM.OpenAIAPIKey = getEnv("BRAHMA_OPENAI_API_KEY", c.LLM.OpenAIAPIKey)
	c.LLM.OpenAIModel = getEnv("BRAHMA_OPENAI_MODEL", c.LLM.OpenAIModel)
	c.LLM.OpenAIBaseURL = getEnv("BRAHMA_OPENAI_BASE_URL", c.LLM.OpenAIBaseURL)
	c.LLM.RequestsPerSecond = getEnvFloat("BRAHMA_LLM_RPS", c.LLM.RequestsPerSecond)

	c.Speech.URL = getEnv("BRAHMA_SPEECH_URL", c.Speech.URL)
	c.Speech.Voice = getEnv("BRAHMA_SPEECH_VOICE", c.Speech.Voice)
}

func (c *Config) validate() error {
	switch c.Storage.Engine {
	case "sqlite":
		if c.Storage.DataPath == "" {
			return fmt.Errorf("config: sqlite engine requires a data path")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("config: postgres engine requires a DSN")
		}
	default:
		return fmt.Errorf("config: unsupported storage engine: %q", c.Storage.Engine)
	}

	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("config: unsupported LLM provider: %q", c.LLM.Provider)
	}
	return nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
