package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/nao1215/pageguard/internal/config"
	"github.com/nao1215/pageguard/internal/panel"
	"github.com/nao1215/pageguard/internal/report"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/spf13/cobra"
)

var errNoPanelTarget = errors.New("specify a hostname, --url or --list")

// NewPanelCmd creates the panel command.
func NewPanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel [hostname]",
		Short: "Show the security score of a site",
		Long: `Panel shows the security summary of the latest snapshot stored for a
hostname: protocol, HTTPS, cookie count, script counts and a 0-100 score.

With --url the page is opened in a browser tab first, and --refresh
re-collects the snapshot from that tab before showing it.

Examples:
  # Show what a watch session recorded
  pageguard panel example.com

  # Open a page, take a fresh snapshot and show the score
  pageguard panel --url https://example.com --refresh

  # List every hostname with a stored snapshot
  pageguard panel --list

  # Markdown summary written to a file
  pageguard panel example.com -m -o example.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPanelCmd,
	}

	cmd.Flags().StringP("url", "u", "",
		"Open this page and show the panel for its tab")
	cmd.Flags().BoolP("refresh", "r", false,
		"Re-collect the snapshot from the tab before showing it (requires --url)")
	cmd.Flags().BoolP("list", "l", false,
		"List hostnames with a stored snapshot")
	addReportFlags(cmd)

	return cmd
}

func runPanelCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	readReportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	ctx := cmd.Context()

	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo() //nolint:errcheck

	if boolFlag(cmd, "list") {
		return listHostnames(ctx, repo, cmd.OutOrStdout())
	}

	pageURL := stringFlag(cmd, "url")
	refresh := boolFlag(cmd, "refresh")
	if refresh && pageURL == "" {
		return errors.New("--refresh requires --url")
	}
	if pageURL == "" && len(args) == 0 {
		return errNoPanelTarget
	}

	w, closeReport, err := openReport(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeReport() //nolint:errcheck

	if pageURL == "" {
		p := panel.New(nil, repo, panel.WithLogger(logger))
		_, err := w.WriteView(p.LoadHost(ctx, args[0]))
		return err
	}
	return runLivePanel(ctx, cfg, repo, w, pageURL, refresh, logger)
}

// runLivePanel opens pageURL in a browser tab and shows the panel for it.
func runLivePanel(ctx context.Context, cfg *config.Config, repo *snapshot.Repository, w report.Writer, pageURL string, refresh bool, logger *slog.Logger) error {
	browser, err := startBrowser(ctx, cfg, cfg.Headless, logger)
	if err != nil {
		return err
	}
	defer browser.Close() //nolint:errcheck

	if _, err := browser.Open(ctx, pageURL); err != nil {
		return err
	}

	p := panel.New(browser, repo,
		panel.WithLogger(logger),
		panel.WithReloadDelay(cfg.ReloadDelay),
	)
	return showPanel(ctx, p, w, refresh)
}

// showPanel writes the panel's view of the active tab. A failed refresh
// keeps the view loaded before it and reports the error.
func showPanel(ctx context.Context, p *panel.Panel, w report.Writer, refresh bool) error {
	view := p.Load(ctx)
	if !refresh {
		_, err := w.WriteView(view)
		return err
	}

	refreshed, refreshErr := p.Refresh(ctx)
	if refreshErr == nil {
		view = refreshed
	}
	if _, err := w.WriteView(view); err != nil {
		return err
	}
	if refreshErr != nil {
		return fmt.Errorf("failed to refresh security data: %w", refreshErr)
	}
	return nil
}

func listHostnames(ctx context.Context, repo *snapshot.Repository, out io.Writer) error {
	hosts, err := repo.Hostnames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hostnames: %w", err)
	}
	if len(hosts) == 0 {
		fmt.Fprintln(out, "No snapshots stored")
		return nil
	}
	slices.Sort(hosts)
	for _, h := range hosts {
		fmt.Fprintln(out, h)
	}
	return nil
}
