package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/pageguard/internal/chrome"
	"github.com/nao1215/pageguard/internal/config"
	"github.com/nao1215/pageguard/internal/log"
	"github.com/nao1215/pageguard/internal/observer"
	"github.com/nao1215/pageguard/internal/report"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/nao1215/pageguard/internal/store"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// stringFlag returns the value of a flag, or "" if cmd does not define it.
func stringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// boolFlag returns the value of a flag, or false if cmd does not define it.
func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// buildConfig creates a Config from defaults, the configuration file and
// the persistent flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = stringFlag(cmd, "config")

	// An explicitly named file must exist; a missing default file is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = boolFlag(cmd, "log-json")
	if dir := stringFlag(cmd, "store-dir"); dir != "" {
		cfg.StoreDir = dir
	}
	cfg.MemoryStore = boolFlag(cmd, "memory")
	return cfg, nil
}

// addReportFlags registers the output format flags shared by the report
// producing commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// readReportFlags copies the output format flags into cfg.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.JSONReport = boolFlag(cmd, "json")
	cfg.MarkdownReport = boolFlag(cmd, "markdown")
	cfg.ReportFile = stringFlag(cmd, "output")
}

// setupLogger creates the secure structured logger writing to w. Typed field
// values are logged under "value" and are always masked.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewSecureJSONLogger(w, cfg.Verbose, log.WithSensitiveKeys("value"))
	}
	return log.NewSecureLogger(w, cfg.Verbose, log.WithSensitiveKeys("value"))
}

// openRepository opens the snapshot store selected by cfg.
func openRepository(cfg *config.Config, logger *slog.Logger) (*snapshot.Repository, func() error, error) {
	if cfg.MemoryStore {
		logger.Debug("using in-memory snapshot store")
		return snapshot.NewRepository(store.NewMemoryStore(), logger), func() error { return nil }, nil
	}

	s, err := store.OpenSQLite(cfg.StoreDir, store.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	logger.Debug("snapshot store opened", "path", s.Path())
	return snapshot.NewRepository(s, logger), s.Close, nil
}

// openReport returns the writer selected by cfg and a function releasing
// its output. Without a report file the writer targets stdout.
func openReport(cfg *config.Config, stdout io.Writer) (report.Writer, func() error, error) {
	output := stdout
	closeOutput := func() error { return nil }

	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		// Reports name the sites a user visited; keep them owner-only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		output = f
		closeOutput = f.Close
	}

	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint()), closeOutput, nil
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output), closeOutput, nil
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose)), closeOutput, nil
	}
}

// startBrowser launches Chromium with the browser settings of cfg.
func startBrowser(ctx context.Context, cfg *config.Config, headless bool, logger *slog.Logger) (*chrome.Browser, error) {
	opts := []chrome.Option{
		chrome.WithHeadless(headless),
		chrome.WithNavigateTimeout(cfg.NavigateTimeout),
		chrome.WithLogger(logger),
	}
	if cfg.BrowserPath != "" {
		opts = append(opts, chrome.WithExecPath(cfg.BrowserPath))
	}
	return chrome.NewBrowser(ctx, opts...)
}

func observerTimings(cfg *config.Config) observer.Timings {
	return observer.Timings{
		Input:     cfg.InputThrottle,
		Position:  cfg.PositionThrottle,
		Discovery: cfg.DiscoveryThrottle,
		BlurGrace: cfg.BlurGrace,
	}
}
