// Package config loads process configuration from defaults, an optional YAML
// file and environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the variable pointing at an optional YAML config file.
const FileEnv = "TREE_RATER_CONFIG"

const (
	EngineOpenAI = "openai"
	EngineGemini = "gemini"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	devFrontendURL = "http://localhost:5173"
)

type Config struct {
	// AppEnv is "production" or anything else (treated as development).
	// NODE_ENV is honoured when APP_ENV is unset.
	AppEnv   string `koanf:"app_env"`
	Port     string `koanf:"port" validate:"required,numeric"`
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// FrontendURL is the allowed CORS origin in production.
	FrontendURL string `koanf:"frontend_url" validate:"required_if=AppEnv production"`
	// PublicBaseURL prefixes the image URLs handed to the oracle and clients.
	PublicBaseURL string `koanf:"public_base_url" validate:"omitempty,url"`
	// ProxyHeader, when set, is trusted for the client IP (e.g. X-Forwarded-For).
	ProxyHeader string `koanf:"proxy_header"`

	AIEngine      string `koanf:"ai_engine" validate:"oneof=openai gemini"`
	OpenAIAPIKey  string `koanf:"openai_api_key" validate:"required_if=AIEngine openai"`
	OpenAIModel   string `koanf:"openai_model"`
	OpenAIBaseURL string `koanf:"openai_base_url" validate:"omitempty,url"`
	GeminiAPIKey  string `koanf:"gemini_api_key" validate:"required_if=AIEngine gemini"`
	GeminiModel   string `koanf:"gemini_model"`

	MongoURI    string `koanf:"mongodb_uri" validate:"required"`
	DBName      string `koanf:"db_name" validate:"required"`
	BlobBucket  string `koanf:"blob_bucket" validate:"required"`
	StoreDriver string `koanf:"store_driver" validate:"oneof=mongo postgres"`
	DatabaseURL string `koanf:"database_url" validate:"required_if=StoreDriver postgres"`

	MaxUploadBytes  int64         `koanf:"max_upload_bytes" validate:"gt=0"`
	RateLimitMax    int           `koanf:"rate_limit_max" validate:"gt=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	BlobTimeout time.Duration `koanf:"blob_timeout" validate:"gt=0"`
	AITimeout   time.Duration `koanf:"ai_timeout" validate:"gt=0"`
	DBTimeout   time.Duration `koanf:"db_timeout" validate:"gt=0"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		AppEnv:          "development",
		Port:            "3001",
		LogLevel:        "info",
		AIEngine:        EngineOpenAI,
		OpenAIModel:     "gpt-4o-mini",
		GeminiModel:     "gemini-1.5-flash",
		DBName:          "tree_rater",
		BlobBucket:      "christmas-trees",
		StoreDriver:     DriverMongo,
		MaxUploadBytes:  5 * 1024 * 1024,
		RateLimitMax:    10,
		RateLimitWindow: 15 * time.Minute,
		BlobTimeout:     15 * time.Second,
		AITimeout:       60 * time.Second,
		DBTimeout:       10 * time.Second,
	}
}

// Load layers defaults, the YAML file named by TREE_RATER_CONFIG (if any) and
// environment variables, then validates the result. Env keys map to fields by
// lower-casing: OPENAI_API_KEY -> openai_api_key.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if !k.Exists("app_env") && k.String("node_env") != "" {
		cfg.AppEnv = k.String("node_env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// AllowedOrigin is the CORS origin: FRONTEND_URL in production, the local
// dev server otherwise.
func (c *Config) AllowedOrigin() string {
	if c.Production() {
		return c.FrontendURL
	}
	return devFrontendURL
}

// BaseURL returns PublicBaseURL without a trailing slash, falling back to
// the local listen address.
func (c *Config) BaseURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return "http://localhost:" + c.Port
}

// MaxUploadMB is the upload limit in whole megabytes, used in messages.
func (c *Config) MaxUploadMB() int64 {
	return c.MaxUploadBytes / (1024 * 1024)
}
