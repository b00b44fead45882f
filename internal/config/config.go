// Package config loads service configuration from the environment and an
// optional TOML file. Environment variables always win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full service configuration surface.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `toml:"addr" validate:"required"`

	// BaseURL is the externally visible origin, used to build OAuth
	// redirect URIs.
	BaseURL string `toml:"base_url" validate:"required,url"`

	// Production controls the Secure attribute on all cookies.
	Production bool `toml:"production"`

	// SessionSecret signs the session token and token cookies.
	SessionSecret string `toml:"session_secret" validate:"required,min=32"`

	// GitHub OAuth app credentials.
	GitHubClientID     string `toml:"github_client_id" validate:"required"`
	GitHubClientSecret string `toml:"github_client_secret" validate:"required"`

	// GitHubToken is the legacy static fallback token. Optional; using it
	// is logged as a deprecated path.
	GitHubToken string `toml:"github_token"`

	// Google OAuth app credentials.
	GoogleClientID     string `toml:"google_client_id" validate:"required"`
	GoogleClientSecret string `toml:"google_client_secret" validate:"required"`

	// GroqAPIKey is the primary text-generation provider key.
	GroqAPIKey string `toml:"groq_api_key" validate:"required"`

	// NvidiaAPIKey is the fallback provider key. Optional; without it the
	// dispatcher has no fallback and rate limits surface directly.
	NvidiaAPIKey string `toml:"nvidia_api_key"`

	// GoogleCredentialsFile is a service-account key file enabling the
	// legacy shared-drive publishing mode. Optional.
	GoogleCredentialsFile string `toml:"google_credentials_file"`

	// SharedDriveID is the shared drive parent for the legacy mode.
	SharedDriveID string `toml:"shared_drive_id"`
}

// Load reads configuration: .env (if present), then the optional TOML file,
// then environment variable overrides, then validation.
func Load(tomlPath string) (*Config, error) {
	// .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:    ":8080",
		BaseURL: "http://localhost:8080",
	}

	if tomlPath != "" {
		data, err := os.ReadFile(tomlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %q: %w", tomlPath, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", tomlPath, err)
		}
	}

	applyEnv(cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.Addr, "PRDOCS_ADDR")
	setString(&cfg.BaseURL, "PRDOCS_BASE_URL")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.GitHubClientID, "GITHUB_ID")
	setString(&cfg.GitHubClientSecret, "GITHUB_SECRET")
	setString(&cfg.GitHubToken, "GITHUB_TOKEN")
	setString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.GroqAPIKey, "GROQ_API")
	setString(&cfg.NvidiaAPIKey, "NVIDIA_API_KEY")
	setString(&cfg.GoogleCredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setString(&cfg.SharedDriveID, "SHARED_DRIVE_ID")

	if v, ok := os.LookupEnv("PRDOCS_PRODUCTION"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Production = b
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
