package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nao1215/pageguard/internal/observer"
	"github.com/nao1215/pageguard/internal/reactor"
	"github.com/nao1215/pageguard/internal/report"
	"github.com/nao1215/pageguard/internal/snapshot"
	"github.com/nao1215/pageguard/internal/strength"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "Open a page and advise on password strength while you type",
		Long: `Watch opens the page in a visible Chromium window. Every password field on
the page, including fields added later, gets a strength advisory below it
that updates as you type and disappears shortly after the field loses focus.

Each document loaded in the tab is also recorded as a security snapshot
for its hostname. Run "pageguard panel <hostname>" to see the score.

Examples:
  # Watch a login page
  pageguard watch https://example.com/login

  # Also print every evaluation to the terminal
  pageguard watch --echo https://example.com/signup`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().Bool("headless", false,
		"Run the browser without a window")
	cmd.Flags().Bool("echo", false,
		"Print each strength evaluation to stdout")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo() //nolint:errcheck

	browser, err := startBrowser(ctx, cfg, boolFlag(cmd, "headless"), logger)
	if err != nil {
		return err
	}
	defer browser.Close() //nolint:errcheck

	tab, err := browser.Open(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)\n", args[0])

	w := &watcher{
		tab:     tab,
		repo:    repo,
		timings: observerTimings(cfg),
		logger:  logger,
		out:     out,
	}
	if boolFlag(cmd, "echo") {
		w.echo = report.NewSimpleWriter(out)
	}
	return w.run(ctx)
}

// watchedTab is a tab an observer can be attached to.
type watchedTab interface {
	observer.Document
	SetSink(fn func(observer.Event))
	Documents() <-chan string
	Done() <-chan struct{}
}

// watcher runs one observer per document loaded in a tab. A new document
// replaces the previous observer and its loop.
type watcher struct {
	tab     watchedTab
	repo    *snapshot.Repository
	timings observer.Timings
	logger  *slog.Logger
	out     io.Writer
	echo    report.Writer
}

// run observes documents until ctx is done or the tab goes away.
func (w *watcher) run(ctx context.Context) error {
	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	release := func() {
		w.tab.SetSink(nil)
		cancel()
		wg.Wait()
	}
	defer release()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.tab.Done():
			release()
			fmt.Fprintln(w.out, "Tab closed")
			return nil
		case location := <-w.tab.Documents():
			release()

			var docCtx context.Context
			docCtx, cancel = context.WithCancel(ctx)
			obs := w.observe(location)

			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := obs.Run(docCtx); err != nil && !errors.Is(err, context.Canceled) {
					w.logger.Warn("observer stopped", "url", location, "error", err)
				}
			}()
		}
	}
}

// observe builds the observer for one document and routes tab events to it.
func (w *watcher) observe(location string) *observer.Observer {
	loop := reactor.NewLoop(reactor.WithLoopLogger(w.logger))

	opts := []observer.Option{
		observer.WithLogger(w.logger.With("url", location)),
		observer.WithTimings(w.timings),
	}
	if w.echo != nil {
		opts = append(opts, observer.WithEvaluationHook(func(_ observer.FieldID, r strength.Result) {
			if _, err := w.echo.WriteStrength(r); err != nil {
				w.logger.Warn("failed to echo evaluation", "error", err)
			}
		}))
	}

	obs := observer.New(loop, w.tab, w.repo, opts...)
	w.tab.SetSink(obs.Dispatch)
	fmt.Fprintf(w.out, "Observing %s\n", location)
	return obs
}

