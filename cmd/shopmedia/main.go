package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/shopmedia/internal/cloudstore"
	"github.com/friendsincode/shopmedia/internal/config"
	"github.com/friendsincode/shopmedia/internal/logging"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shopmedia",
	Short: "Shopmedia - batch preparation of e-commerce media assets",
	Long:  "Shopmedia walks a tree of product videos and photos, re-encodes them to web-friendly formats, and stamps titles, tags and ratings from a CSV product mapping.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	for _, warning := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warning)
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so runs
// stop cleanly at the next item boundary.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newStore builds the S3 store from config, with optional bucket and
// endpoint overrides from command flags.
func newStore(ctx context.Context, bucket, endpoint string) (cloudstore.Store, error) {
	opts := cloudstore.S3Options{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UsePathStyle:    cfg.S3UsePathStyle,
	}
	if bucket != "" {
		opts.Bucket = bucket
	}
	if endpoint != "" {
		opts.Endpoint = endpoint
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("no S3 bucket configured; set SHOPMEDIA_S3_BUCKET or pass --bucket")
	}
	return cloudstore.NewS3Store(ctx, opts, logger)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
