package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/aleksaelezovic/n3logic/internal/config"
	"github.com/aleksaelezovic/n3logic/internal/server"
	"github.com/aleksaelezovic/n3logic/internal/watch"
	"github.com/aleksaelezovic/n3logic/pkg/n3"
	"github.com/aleksaelezovic/n3logic/pkg/store"
	"github.com/spf13/cobra"
)

// errCheckFailed is returned by check when at least one document fails
var errCheckFailed = errors.New("check failed")

func parseCmd(a *app) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a document and print the result as JSON",
		Long:  "Parse a document and print the result as JSON. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			result, err := parseDocument(cache, data, a.parseOptions())
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON on a single line")
	return cmd
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Report parse errors as path:line: message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				data, err := readInput(cmd, path)
				if err == nil {
					_, err = parseDocument(cache, data, a.parseOptions())
				}
				if err != nil {
					failed++
					fmt.Fprintln(out, formatError(path, err))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errCheckFailed, failed, len(args))
			}
			return nil
		},
	}
}

func builtinsCmd(a *app) *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "builtins",
		Short: "List the built-in catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if namespace != "" {
				if _, ok := n3.BuiltinNamespaces[namespace]; !ok {
					return fmt.Errorf("unknown namespace: %s", namespace)
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, b := range n3.DefaultCatalog() {
				if namespace == "" || b.Namespace == namespace {
					fmt.Fprintf(w, "%s\t%s\n", b.Prefixed, b.URI)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Only list one namespace (math, string, list, time, log, type)")
	return cmd
}

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "Re-parse documents under DIR as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()

			w, err := watch.New(watch.Config{
				Root:       args[0],
				Extensions: a.config.Watch.Extensions,
				Ignore:     a.config.Watch.Ignore,
				Debounce:   a.config.Watch.Debounce,
				Options:    a.parseOptions(),
				Cache:      cache,
				Logger:     a.logger,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer func() { _ = w.Stop() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			initial, err := w.Scan(ctx)
			if err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}
			for _, event := range initial {
				fmt.Fprintln(out, formatEvent(event))
			}

			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			for event := range w.Events() {
				fmt.Fprintln(out, formatEvent(event))
			}
			return nil
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP parse endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()

			if cmd.Flags().Changed("addr") {
				a.config.Server.Addr = addr
			}

			s := server.NewServer(server.Config{
				Addr:         a.config.Server.Addr,
				ReadTimeout:  a.config.Server.ReadTimeout,
				WriteTimeout: a.config.Server.WriteTimeout,
				Options:      a.parseOptions(),
				Cache:        cache,
				Logger:       a.logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func cacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the parse cache",
	}

	withCache := func(run func(cmd *cobra.Command, cache *store.ParseCache) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if !a.config.Cache.Enabled || a.config.Cache.Dir == "" {
				return errors.New("no cache directory configured (use --cache-dir or cache.dir)")
			}
			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()
			return run(cmd, cache)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Print the number of cached results and tracked files",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, cache *store.ParseCache) error {
				stats, err := cache.Stats()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "results: %d\npaths: %d\n", stats.Results, stats.Paths)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached result and tracked file",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, cache *store.ParseCache) error {
				if err := cache.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
				return nil
			}),
		},
	)

	return cmd
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the effective configuration to PATH (default " + config.FileName + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := a.config.SaveToFile(path); err != nil {
				return err
			}
			a.logger.Info("Created config file", slog.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func parseDocument(cache *store.ParseCache, data []byte, opts n3.Options) (*n3.ParseResult, error) {
	if cache == nil {
		return n3.ParseBytes(data, opts)
	}
	result, _, err := cache.Parse(string(data), opts)
	return result, err
}

// formatError renders err as path:line: message
func formatError(path string, err error) string {
	var parseErr *n3.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("%s:%d: %v", path, parseErr.Line, parseErr.Err)
	}
	return fmt.Sprintf("%s: %v", path, err)
}

func formatEvent(event watch.Event) string {
	switch {
	case event.Err != nil:
		return formatError(event.Path, event.Err)
	case event.Op == watch.OpDelete:
		return fmt.Sprintf("%s %s", event.Op, event.Path)
	default:
		return fmt.Sprintf("%s %s: %d triples, %d rules, %d builtins",
			event.Op, event.Path, len(event.Result.Triples), len(event.Result.Rules), len(event.Result.Builtins))
	}
}
