// Package main provides the n3logic binary entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/aleksaelezovic/n3logic/internal/config"
	"github.com/aleksaelezovic/n3logic/internal/storage"
	"github.com/aleksaelezovic/n3logic/pkg/n3"
	"github.com/aleksaelezovic/n3logic/pkg/store"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "n3logic"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands once flags are resolved
type app struct {
	configPath string
	debug      bool
	logLevel   string
	cacheDir   string

	config *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "N3Logic parser and tooling",
		Long: `n3logic parses N3Logic documents into triples, implication rules
and built-in references.

Results are printed as JSON, checked for errors, served over HTTP or
re-parsed as files change. Parse results can be cached on disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML, default ./"+config.FileName+")")
	flags.BoolVar(&a.debug, "debug", false, "Trace parser checkpoints (implies --log-level debug)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.cacheDir, "cache-dir", "", "Enable the parse cache in this directory")

	cmd.AddCommand(
		parseCmd(a),
		checkCmd(a),
		builtinsCmd(a),
		watchCmd(a),
		serveCmd(a),
		cacheCmd(a),
		configCmd(a),
		versionCmd(),
	)

	return cmd
}

// setup loads the config file, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	bootstrap := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(a.configPath, bootstrap)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags take precedence over the file when set
	flags := cmd.Flags()
	overrides := &config.Config{}
	if flags.Changed("log-level") {
		overrides.Log.Level = a.logLevel
	}
	if flags.Changed("debug") {
		overrides.Parser.Debug = a.debug
	}
	if flags.Changed("cache-dir") {
		overrides.Cache.Enabled = true
		overrides.Cache.Dir = a.cacheDir
	}
	cfg.Merge(overrides)
	if cfg.Parser.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.config = cfg
	return nil
}

func (a *app) parseOptions() n3.Options {
	return n3.Options{Debug: a.config.Parser.Debug, Logger: a.logger}
}

// openCache opens the configured parse cache. It returns a nil cache when
// caching is disabled; the returned close function is always safe to call.
func (a *app) openCache() (*store.ParseCache, func(), error) {
	if !a.config.Cache.Enabled {
		return nil, func() {}, nil
	}

	backend, err := storage.NewBadgerStorage(a.config.Cache.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	a.logger.Debug("Opened parse cache", slog.String("dir", a.config.Cache.Dir))

	closeFn := func() {
		if err := backend.Sync(); err != nil {
			a.logger.Warn("Failed to sync cache", slog.String("error", err.Error()))
		}
		if err := backend.Close(); err != nil {
			a.logger.Warn("Failed to close cache", slog.String("error", err.Error()))
		}
	}
	return store.NewParseCache(backend, a.logger), closeFn, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
