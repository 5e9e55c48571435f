package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/p33ves/synlint/internal/graph"
	"github.com/p33ves/synlint/internal/lint"
	"github.com/p33ves/synlint/internal/logging"
	"github.com/p33ves/synlint/internal/workspace/parser"
)

type analyzeOptions struct {
	format      string
	failOn      string
	summary     bool
	details     bool
	policyPaths []string
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <template-file>",
		Short: "Run the check catalog against a workspace template",
		Long: `Analyze an exported workspace template for structural, hygiene, and
correctness issues.

The analyzer parses the template, builds the resource dependency graph,
and evaluates every built-in rule plus any custom policies supplied via
--policy.

Use --fail-on to set a severity threshold: the command exits with
code 9 if any finding meets or exceeds the threshold.

Output formats: table (default), json, sarif.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, args[0], opts)
		},
	}

	f := cmd.Flags()

	f.StringVar(&opts.format, "format", "table", "output format: table, json, sarif")
	f.StringVar(&opts.failOn, "fail-on", "", "fail with exit code 9 if findings >= severity (high, medium, low)")
	f.BoolVar(&opts.summary, "summary", true, "emit the per-rule summary")
	f.BoolVar(&opts.details, "details", false, "emit the full finding list")
	f.StringArrayVar(&opts.policyPaths, "policy", nil, "custom policy YAML files (can specify multiple)")

	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, templatePath string, opts *analyzeOptions) error {
	logger := logging.FromContext(ctx)

	// 1. Build formatter and parse the threshold early so we fail fast on
	// bad flag values.
	formatter, err := lint.NewFormatter(opts.format)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	var threshold lint.Severity

	if opts.failOn != "" {
		threshold, err = lint.ParseSeverity(opts.failOn)
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
	}

	// 2. Run the analysis.
	result, err := analyzeTemplate(ctx, templatePath, opts.policyPaths)
	if err != nil {
		return err
	}

	logger.Info("analysis complete",
		slog.String("template", templatePath),
		slog.Int("findings", len(result.Findings)),
	)

	// 3. Evaluate the threshold before pruning drops the findings.
	passed := opts.failOn == "" || result.Passed(threshold)

	// 4. Prune sections per the emission flags.
	if !opts.details {
		result.Findings = nil
	}

	if !opts.summary {
		result.Summary = nil
	}

	// 5. Format output.
	if err := formatter.Format(cmd.OutOrStdout(), result); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("formatting results: %w", err)}
	}

	if !passed {
		return &ExitError{
			Code: 9,
			Err:  fmt.Errorf("analysis failed: findings at or above %s severity", threshold.String()),
		}
	}

	return nil
}

// analyzeTemplate loads a workspace template and evaluates the full check
// catalog plus any custom policies against it.
func analyzeTemplate(ctx context.Context, templatePath string, policyPaths []string) (*lint.Result, error) {
	logger := logging.FromContext(ctx)

	ws, err := parser.LoadFile(ctx, templatePath)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("loading template: %w", err)}
	}

	logger.Info("template loaded",
		slog.Int("resources", len(ws.Resources)),
		slog.Int("pipelines", len(ws.Pipelines)),
	)

	checks := lint.Catalog()

	for _, path := range policyPaths {
		pf, loadErr := lint.LoadPolicyFile(path)
		if loadErr != nil {
			return nil, &ExitError{Code: 1, Err: fmt.Errorf("loading policy %s: %w", path, loadErr)}
		}

		checks = append(checks, pf.ToChecks()...)

		logger.Info("loaded custom policy",
			slog.String("path", path),
			slog.Int("rules", len(pf.Rules)),
		)
	}

	arts := graph.Build(ws)

	analyzer := lint.New(checks...)

	return analyzer.Run(ctx, ws, arts), nil
}
