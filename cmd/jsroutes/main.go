package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds the state shared by all commands.
type app struct {
	cfg    config
	logger *slog.Logger
	stderr io.Writer
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config, stderr io.Writer) *cobra.Command {
	a := &app{cfg: cfg, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "jsroutes",
		Short: "Reverse named routes into URLs",
		Long: `jsroutes resolves named route patterns into URLs.

Route tables map names to patterns with <> and <name> tokens. Tables and
context documents are read from JSON or YAML files, inline JSON, or
http(s) URLs. Settings can also be given as JSROUTES_* environment
variables; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := newLogger(a.stderr, a.cfg.LogLevel, a.cfg.LogColored, a.cfg.LogTimeFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfg.URLs, "urls", a.cfg.URLs, "route table location (file, URL or inline JSON)")
	flags.StringVar(&a.cfg.Context, "context", a.cfg.Context, "context location (file, URL or inline JSON)")
	flags.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "timeout for loading remote documents")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&a.cfg.LogColored, "log-colored", a.cfg.LogColored, "colorize log output")
	flags.StringVar(&a.cfg.LogTimeFormat, "log-time-format", a.cfg.LogTimeFormat, "time layout of log lines")

	rootCmd.AddCommand(
		a.resolveCmd(),
		a.staticCmd(),
		a.serveCmd(),
		a.exportCmd(),
		versionCmd(),
	)

	return rootCmd
}
