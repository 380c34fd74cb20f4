package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv reads .env into the process environment unless running on a
// host that injects its own environment.
func loadDotEnv() {
	if os.Getenv("RENDER") != "" {
		return
	}
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}
}

type lookupFunc func(string) (string, bool)

// parseEnv overlays environment variables onto cfg. Unset or empty variables
// leave the current value untouched; malformed ones are reported together.
func parseEnv(cfg *Config, lookup lookupFunc) error {
	var errs []error
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}
	invalid := func(key, v, kind string) {
		errs = append(errs, fmt.Errorf("%s: invalid %s %q", key, kind, v))
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				invalid(key, v, "duration")
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				invalid(key, v, "integer")
				return
			}
			*dst = n
		}
	}
	int64Var := func(key string, dst *int64) {
		if v, ok := get(key); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				invalid(key, v, "integer")
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := get(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				invalid(key, v, "number")
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				invalid(key, v, "boolean")
				return
			}
			*dst = b
		}
	}

	str("PORT", &cfg.Port)
	str("BASE_URL", &cfg.FrontendURL)
	str("DB_URL", &cfg.DatabaseURL)

	str("JWT_SECRET", &cfg.JWTSecret)
	dur("ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL)
	dur("REFRESH_TOKEN_TTL", &cfg.RefreshTokenTTL)
	str("SESSION_SECRET", &cfg.SessionSecret)
	boolean("SECURE_COOKIES", &cfg.SecureCookies)

	str("AWS_BUCKET_NAME", &cfg.S3Bucket)
	str("AWS_REGION", &cfg.S3Region)
	str("AWS_ENDPOINT_URL", &cfg.S3Endpoint)
	str("AWS_ACCESS_KEY_ID", &cfg.S3AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &cfg.S3SecretKey)
	boolean("AWS_S3_USE_PATH_STYLE", &cfg.S3UsePathStyle)
	str("PUBLIC_BASE_URL", &cfg.PublicBaseURL)
	dur("PRESIGN_TTL", &cfg.PresignTTL)

	integer("UPLOAD_WORKERS", &cfg.UploadWorkers)
	str("UPLOAD_TEMP_DIR", &cfg.UploadTempDir)
	int64Var("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)

	dur("CLEANUP_INTERVAL", &cfg.CleanupInterval)
	dur("ORPHAN_GRACE", &cfg.OrphanGrace)

	float("RATE_LIMIT_PER_SECOND", &cfg.RateLimitPerSecond)
	integer("RATE_LIMIT_BURST", &cfg.RateLimitBurst)

	str("GOOGLE_CLIENT_ID", &cfg.GoogleClientID)
	str("GOOGLE_CLIENT_SECRET", &cfg.GoogleClientSecret)
	str("GOOGLE_REDIRECT_URL", &cfg.GoogleRedirectURL)
	str("GITHUB_CLIENT_ID", &cfg.GitHubClientID)
	str("GITHUB_CLIENT_SECRET", &cfg.GitHubClientSecret)
	str("GITHUB_REDIRECT_URL", &cfg.GitHubRedirectURL)

	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	return errors.Join(errs...)
}
