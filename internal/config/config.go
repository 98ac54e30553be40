// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.coursewise/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - AI: model selection, temperature, max tokens, embedder, tool-round budget
//   - Retrieval: default search result limit, chunking parameters
//   - Sessions: conversation history depth
//   - Storage: PostgreSQL connection
//   - Serve: HTTP address, CORS, rate limiting
//
// Security: sensitive data (passwords, API keys) are never logged.
// Validation: range checks in validation.go with sentinel errors for errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

const (
	// DefaultModel is the default Gemini completion model.
	DefaultModel = "gemini-2.5-flash"

	// DefaultEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 outputs 3072 dimensions by default but supports
	// truncation to 768 via OutputDimensionality; the pgvector schema uses
	// 768 dimensions (see knowledge.VectorDimension).
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultMaxResults is the default search result limit.
	// A value of 0 is accepted by Load but makes every default-limit search
	// fail with a descriptive error; see knowledge.Store.Search.
	DefaultMaxResults = 5

	// DefaultMaxHistory is the number of past exchanges kept per session.
	DefaultMaxHistory = 2

	// DefaultMaxToolRounds bounds sequential tool-calling rounds per query.
	DefaultMaxToolRounds = 2

	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the chunk overlap in characters.
	DefaultChunkOverlap = 100
)

// Config stores application configuration.
type Config struct {
	// AI model configuration
	ModelName   string  `mapstructure:"model_name"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// Embedding configuration
	EmbedderModel string `mapstructure:"embedder_model"`

	// Retrieval configuration
	MaxResults    int `mapstructure:"max_results"`
	MaxToolRounds int `mapstructure:"max_tool_rounds"`

	// Session configuration
	MaxHistory int `mapstructure:"max_history"`

	// Ingestion configuration
	DocsDir      string `mapstructure:"docs_dir"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Serve configuration
	HTTPAddr    string   `mapstructure:"http_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy"`
	RateBurst   int      `mapstructure:"rate_burst"`

	// Observability configuration (empty = tracing disabled)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".coursewise")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, overrides the individual postgres_* fields
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// AI defaults: temperature 0 and a small token budget keep answers
	// deterministic and brief, matching the fixed instruction template.
	v.SetDefault("model_name", DefaultModel)
	v.SetDefault("temperature", 0.0)
	v.SetDefault("max_tokens", 800)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	// Retrieval defaults
	v.SetDefault("max_results", DefaultMaxResults)
	v.SetDefault("max_tool_rounds", DefaultMaxToolRounds)

	// Session defaults
	v.SetDefault("max_history", DefaultMaxHistory)

	// Ingestion defaults
	v.SetDefault("docs_dir", "./docs")
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "coursewise")
	v.SetDefault("postgres_password", "coursewise_dev_password")
	v.SetDefault("postgres_db_name", "coursewise")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Serve defaults
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_burst", 60)

	// Observability defaults (disabled)
	v.SetDefault("otlp_endpoint", "")
}

// bindEnvVariables binds environment variable overrides explicitly.
//
// NOTE: GEMINI_API_KEY is read directly by the genai client, not via Viper.
// Validate() checks its presence.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "COURSEWISE_MODEL_NAME")
	mustBind("embedder_model", "COURSEWISE_EMBEDDER_MODEL")
	mustBind("max_results", "COURSEWISE_MAX_RESULTS")
	mustBind("docs_dir", "COURSEWISE_DOCS_DIR")
	mustBind("http_addr", "COURSEWISE_HTTP_ADDR")
	mustBind("cors_origins", "COURSEWISE_CORS_ORIGINS")
	mustBind("trust_proxy", "COURSEWISE_TRUST_PROXY")
	mustBind("rate_burst", "COURSEWISE_RATE_BURST")
	mustBind("otlp_endpoint", "COURSEWISE_OTLP_ENDPOINT")
	mustBind("postgres_password", "COURSEWISE_POSTGRES_PASSWORD")
}

// parseDatabaseURL applies DATABASE_URL (when set) over the postgres_* fields.
// Accepts postgres:// and postgresql:// URLs.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported scheme %q (expected postgres or postgresql)", u.Scheme)
	}

	if host := u.Hostname(); host != "" {
		c.PostgresHost = host
	}
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", port, err)
		}
		c.PostgresPort = p
	}
	if u.User != nil {
		c.PostgresUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if name := filepath.Base(u.Path); name != "." && name != "/" {
		c.PostgresDBName = name
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}

	return nil
}

// ConnString returns the PostgreSQL connection URL built from the
// postgres_* fields, suitable for pgxpool and golang-migrate.
func (c *Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// APIKey returns the Gemini API key from the environment.
func APIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}
