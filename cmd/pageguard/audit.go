package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nao1215/pageguard/internal/config"
	"github.com/nao1215/pageguard/internal/fetch"
	"github.com/nao1215/pageguard/internal/pipeline"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/spf13/cobra"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Snapshot and score one or more pages",
		Long: `Audit loads every URL in a headless browser tab, records its security
snapshot and prints the resulting scores. Pages are audited concurrently.

With --static pages are fetched over plain HTTP instead of a browser, so
only scripts present in the served markup and cookies set by the response
are counted.

With --html the arguments are local HTML files instead. They are read
without a browser and attributed to the page given by --url, so only
scripts present in the markup are counted.

Examples:
  # Audit a few sites
  pageguard audit https://example.com https://example.org

  # Markdown report with a status chart
  pageguard audit -m -o audit.md https://example.com https://example.org

  # Audit without a browser
  pageguard audit --static https://example.com

  # Audit a saved page without storing the result
  pageguard audit --html --url https://example.com/login --no-store login.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAuditCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pages audited concurrently")
	cmd.Flags().Bool("static", false,
		"Fetch pages over HTTP without a browser")
	cmd.Flags().Bool("html", false,
		"Treat arguments as local HTML files (requires --url)")
	cmd.Flags().StringP("url", "u", "",
		"Page URL the HTML files were served from")
	cmd.Flags().String("cookie", "",
		"Document cookie string to assume for HTML files")
	cmd.Flags().Bool("no-store", false,
		"Do not record snapshots in the store")
	addReportFlags(cmd)

	return cmd
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	readReportFlags(cmd, cfg)
	if cmd.Flags().Changed("batch") {
		cfg.BatchSize, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	html := boolFlag(cmd, "html")
	static := boolFlag(cmd, "static")
	pageURL := stringFlag(cmd, "url")
	if html && pageURL == "" {
		return errors.New("--html requires --url")
	}
	if html && static {
		return errors.New("--html and --static cannot be used together")
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo *snapshot.Repository
	if !boolFlag(cmd, "no-store") {
		var closeRepo func() error
		repo, closeRepo, err = openRepository(cfg, logger)
		if err != nil {
			return err
		}
		defer closeRepo() //nolint:errcheck
	}

	var collector pipeline.Collector
	switch {
	case html:
		collector = pipeline.NewHTMLCollector(pageURL, stringFlag(cmd, "cookie"))
	case static:
		collector = fetch.New(fetch.WithClient(&http.Client{Timeout: cfg.NavigateTimeout}))
	default:
		browser, err := startBrowser(ctx, cfg, cfg.Headless, logger)
		if err != nil {
			return err
		}
		defer browser.Close() //nolint:errcheck
		collector = pipeline.NewBrowserCollector(browser)
	}

	audits, err := runAudits(ctx, cfg, collector, repo, args, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}

	w, closeReport, err := openReport(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeReport() //nolint:errcheck
	if _, err := w.WriteAudits(audits); err != nil {
		return err
	}

	failed := 0
	for _, a := range audits {
		if a.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d audits failed", failed, len(audits))
	}
	return nil
}

// runAudits audits targets concurrently, printing progress to progress as
// each one completes. The audits are returned in target order.
func runAudits(ctx context.Context, cfg *config.Config, collector pipeline.Collector, repo *snapshot.Repository, targets []string, progress io.Writer, logger *slog.Logger) ([]*pipeline.Audit, error) {
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.New(
				pipeline.AuditSteps(collector, repo, logger),
				pipeline.WithLogger(logger),
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	audits := make([]*pipeline.Audit, len(targets))
	var (
		mu   sync.Mutex
		done int
	)
	err := bp.ProcessBatchWithCallback(ctx, targets, func(a *pipeline.Audit, index int) {
		mu.Lock()
		defer mu.Unlock()
		audits[index] = a
		done++

		status := "ok"
		if a.Failed() {
			status = "failed: " + a.ErrorMessage
		}
		fmt.Fprintf(progress, "[%d/%d] %s %s\n", done, len(targets), a.Target, status)
	})
	if err != nil {
		return nil, err
	}
	return audits, nil
}
