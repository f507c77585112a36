package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/timejump/internal/pipeline"
)

const defaultTimeout = 60 * time.Second

// setup reads the shared flags into a validated pipeline config and a logger.
func setup(cmd *cobra.Command, pageURL string) (pipeline.Config, *zap.Logger, error) {
	controlURL, _ := cmd.Flags().GetString("control-url")
	browserBin, _ := cmd.Flags().GetString("browser-bin")
	headless, _ := cmd.Flags().GetBool("headless")
	store, _ := cmd.Flags().GetString("store")
	dbPath, _ := cmd.Flags().GetString("db")
	wait, _ := cmd.Flags().GetDuration("wait")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log, err := newLogger(verbose)
	if err != nil {
		return pipeline.Config{}, nil, fmt.Errorf("logger: %w", err)
	}

	cfg := pipeline.Config{
		URL:        pageURL,
		ControlURL: controlURL,
		BrowserBin: browserBin,
		Headless:   headless,
		Settle:     wait,
		Store:      store,
		DBPath:     dbPath,
		Log:        log,
		Logf:       log.Sugar().Debugf,
	}
	if err := cfg.Validate(); err != nil {
		_ = log.Sync()
		return pipeline.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, log, nil
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
