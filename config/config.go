// Package config holds runtime settings for the catalog server: built-in
// defaults, an optional YAML file, .env/environment variables and finally
// command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/basit/fileshare-catalog/flagx"
)

// Config holds runtime settings for the catalog server.
type Config struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
	DatabaseURL string `yaml:"database_url"`

	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	SessionSecret   string        `yaml:"session_secret"`
	SecureCookies   bool          `yaml:"secure_cookies"`

	S3Bucket       string        `yaml:"s3_bucket"`
	S3Region       string        `yaml:"s3_region"`
	S3Endpoint     string        `yaml:"s3_endpoint"`
	S3AccessKey    string        `yaml:"s3_access_key"`
	S3SecretKey    string        `yaml:"s3_secret_key"`
	S3UsePathStyle bool          `yaml:"s3_use_path_style"`
	PublicBaseURL  string        `yaml:"public_base_url"`
	PresignTTL     time.Duration `yaml:"presign_ttl"`

	UploadWorkers  int    `yaml:"upload_workers"`
	UploadTempDir  string `yaml:"upload_temp_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	OrphanGrace     time.Duration `yaml:"orphan_grace"`

	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`

	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	GoogleRedirectURL  string `yaml:"google_redirect_url"`
	GitHubClientID     string `yaml:"github_client_id"`
	GitHubClientSecret string `yaml:"github_client_secret"`
	GitHubRedirectURL  string `yaml:"github_redirect_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// LoadDefaults populates Config with development defaults.
// Secrets set here are placeholders and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Port = "8080"
	c.FrontendURL = "http://localhost:3000"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 30 * 24 * time.Hour
	c.S3Bucket = "files"
	c.S3Region = "us-east-1"
	c.PresignTTL = 15 * time.Minute
	c.UploadWorkers = 1
	c.UploadTempDir = os.TempDir()
	c.MaxUploadBytes = 512 << 20
	c.CleanupInterval = time.Hour
	c.OrphanGrace = 24 * time.Hour
	c.RateLimitPerSecond = 10
	c.RateLimitBurst = 20
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Load builds a Config from defaults, the optional YAML file named by
// -config/-c (or CONFIG_FILE), the environment and the flags in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path := flagx.ConfigFileFlag(args)
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := parseYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	loadDotEnv()
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = cfg.JWTSecret
	}

	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_URL is not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.S3Bucket == "" {
		errs = append(errs, errors.New("AWS_BUCKET_NAME is not set"))
	}
	if c.UploadWorkers < 1 {
		errs = append(errs, fmt.Errorf("upload workers must be >= 1, got %d", c.UploadWorkers))
	}
	return errors.Join(errs...)
}

// OAuthEnabled reports whether any OAuth provider is configured.
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" || c.GitHubClientID != ""
}
