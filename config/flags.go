package config

import (
	"flag"
	"fmt"

	"github.com/basit/fileshare-catalog/flagx"
)

// parseFlags overlays command-line flags onto cfg.
//
// Supported flags:
//
//	-p string   HTTP port
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret
//	-b string   S3 bucket
//	-w int      upload workers
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-p", "-d", "-s", "-b", "-w"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.Port, "p", cfg.Port, "HTTP port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "database DSN")
	fs.StringVar(&cfg.JWTSecret, "s", cfg.JWTSecret, "JWT secret")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.IntVar(&cfg.UploadWorkers, "w", cfg.UploadWorkers, "number of upload workers")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
