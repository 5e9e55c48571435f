// Package watch re-runs the workspace analysis whenever the template
// changes on disk, reporting how the findings drifted between runs.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc executes one analysis pass and returns its result so the watcher
// can report finding counts and diff the rendered report between runs.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the output of a single analysis run.
type RunResult struct {
	// IssueCount is the total number of findings across all rules.
	IssueCount int

	// Report is the rendered table report, used for drift diffing.
	Report string
}

// Options configures the watch behaviour.
type Options struct {
	// TemplatePath is the workspace template file to watch.
	TemplatePath string

	// ExtraFiles are additional files to watch (e.g. policy files).
	ExtraFiles []string

	// Debounce is the quiet period before triggering a re-run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	tplPath, err := filepath.Abs(opts.TemplatePath)
	if err != nil {
		return fmt.Errorf("resolving template path %q: %w", opts.TemplatePath, err)
	}

	// Watch the containing directory: editors and exports replace the
	// file atomically, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(tplPath)); err != nil {
		return fmt.Errorf("watching template directory: %w", err)
	}

	watched := map[string]bool{tplPath: true}

	for _, f := range opts.ExtraFiles {
		abs, absErr := filepath.Abs(f)
		if absErr != nil {
			return fmt.Errorf("resolving extra file %q: %w", f, absErr)
		}

		if err := watcher.Add(abs); err != nil {
			return fmt.Errorf("watching file %q: %w", abs, err)
		}

		watched[abs] = true
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", opts.TemplatePath, opts.Debounce)

	// Initial analysis; its report seeds the drift baseline.
	r := &runner{}
	r.run(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		r.run(sigCtx, opts, runFn, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, watched) {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// runner serializes analysis runs and carries the drift baseline between
// them. Debounce callbacks fire on timer goroutines and can overlap when a
// run outlasts the debounce interval.
type runner struct {
	mu         sync.Mutex
	lastReport string
}

func (r *runner) run(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastReport = doRun(ctx, opts, runFn, trigger, r.lastReport)
}

// doRun executes a single analysis, prints the status line and the report
// drift, and returns the new report as the next baseline.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger, lastReport string) string {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return lastReport
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d issues)\n", now, trigger, result.IssueCount)

	if lastReport != "" {
		diff, diffErr := DiffReports(lastReport, result.Report)
		if diffErr != nil {
			opts.Logger.Error("diffing reports", slog.String("error", diffErr.Error()))
		} else if diff != "" {
			fmt.Fprintln(opts.Out, diff)
		} else {
			fmt.Fprintln(opts.Out, "  no report changes")
		}
	}

	return result.Report
}

// isRelevant filters events down to writes, creates, and renames of the
// watched files. The directory watch also surfaces sibling-file noise.
func isRelevant(event fsnotify.Event, watched map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return watched[abs]
}
