package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/p33ves/synlint/internal/lint"
	"github.com/p33ves/synlint/internal/logging"
	"github.com/p33ves/synlint/internal/watch"
)

type watchOptions struct {
	debounce    time.Duration
	policyPaths []string
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <template-file>",
		Short: "Re-analyze the template whenever it changes",
		Long: `Watch a workspace template and re-run the analysis on every change.

Each run prints a status line with the issue count and a unified diff
of the report against the previous run, so regressions introduced by an
edit are visible immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()

	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before re-analyzing")
	f.StringArrayVar(&opts.policyPaths, "policy", nil, "custom policy YAML files (can specify multiple)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, templatePath string, opts *watchOptions) error {
	logger := logging.FromContext(ctx)

	runFn := func(runCtx context.Context) (*watch.RunResult, error) {
		result, err := analyzeTemplate(runCtx, templatePath, opts.policyPaths)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer

		formatter := &lint.TableFormatter{}
		if err := formatter.Format(&buf, result); err != nil {
			return nil, err
		}

		return &watch.RunResult{
			IssueCount: len(result.Findings),
			Report:     buf.String(),
		}, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.TemplatePath = templatePath
	watchOpts.ExtraFiles = opts.policyPaths
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.OutOrStdout()

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
