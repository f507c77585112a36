package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timejump",
		Short:         "Jump a page's video to a timecode",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("control-url", os.Getenv("TIMEJUMP_CONTROL_URL"), "DevTools URL of a running browser to attach to")
	pf.String("browser-bin", os.Getenv("TIMEJUMP_BROWSER_BIN"), "Browser binary to launch")
	pf.Bool("headless", true, "Launch the browser headless")
	pf.String("store", getenvDefault("TIMEJUMP_STORE", "auto"), "Where to remember the last input: auto, page, sqlite")
	pf.String("db", os.Getenv("TIMEJUMP_DB"), "SQLite file for --store=sqlite (default ~/.timejump/last.db)")
	pf.Duration("timeout", defaultTimeout, "Overall timeout for page operations")
	pf.Duration("wait", 0, "Extra time to let the page settle after load")
	pf.BoolP("verbose", "v", false, "Debug logging")

	root.AddCommand(
		newJumpCmd(),
		newOpenCmd(),
		newParseCmd(),
		newVideosCmd(),
	)
	return root
}

// newLogger mirrors a development console logger on stderr; stdout carries results.
func newLogger(verbose bool) (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}
